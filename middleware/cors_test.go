package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS("http://app.test"))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name           string
		method         string
		origin         string
		expectedStatus int
		expectedAllow  string
	}{
		{"allowed origin", "GET", "http://app.test", http.StatusOK, "http://app.test"},
		{"other origin", "GET", "http://evil.test", http.StatusOK, ""},
		{"preflight", "OPTIONS", "http://app.test", http.StatusNoContent, "http://app.test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.expectedAllow {
				t.Errorf("Expected allow origin %q, got %q", tt.expectedAllow, got)
			}
		})
	}
}
