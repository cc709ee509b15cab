package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rahulraut1220/LegalEase/config"
	"github.com/rahulraut1220/LegalEase/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:        "test-secret-key",
		TokenExpireHours: 24,
	}
}

func TestGenerateToken(t *testing.T) {
	cfg := testAuthConfig()

	token, expiresAt, err := GenerateToken("user-1", "ada@example.com", model.RoleLawyer, cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if token == "" {
		t.Error("Expected non-empty token")
	}

	// Verify expiration time is approximately 24 hours from now
	expectedExpiry := time.Now().Add(24 * time.Hour)
	if expiresAt.Before(expectedExpiry.Add(-time.Minute)) || expiresAt.After(expectedExpiry.Add(time.Minute)) {
		t.Errorf("Expiry time %v is not within expected range of %v", expiresAt, expectedExpiry)
	}

	claims, err := ParseToken(token, cfg)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ada@example.com" || claims.Role != "lawyer" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestTokenIssuer(t *testing.T) {
	cfg := testAuthConfig()
	issue := TokenIssuer(cfg)

	token, _, err := issue(&model.User{ID: "user-2", Email: "bob@example.com", Role: model.RoleClient})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	claims, err := ParseToken(token, cfg)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if claims.UserID != "user-2" || claims.Role != "client" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, err := GenerateToken("user-1", "ada@example.com", model.RoleClient, testAuthConfig())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	other := &config.AuthConfig{JWTSecret: "other-secret", TokenExpireHours: 24}
	if _, err := ParseToken(token, other); err == nil {
		t.Error("Expected error for token signed with another secret")
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testAuthConfig()

	// Generate a valid token
	token, _, err := GenerateToken("user-1", "ada@example.com", model.RoleClient, cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid format",
			authHeader:     token, // Missing "Bearer "
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer invalid.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthMiddleware(cfg))
			router.GET("/test", func(c *gin.Context) {
				p := GetPrincipal(c)
				c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthMiddlewareSetsPrincipal(t *testing.T) {
	cfg := testAuthConfig()
	token, _, _ := GenerateToken("user-7", "eve@example.com", model.RoleLawyer, cfg)

	var got struct {
		id, email string
		role      model.Role
	}
	router := gin.New()
	router.Use(AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		got.id, got.email, got.role = GetUserID(c), GetEmail(c), GetRole(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if got.id != "user-7" || got.email != "eve@example.com" || got.role != model.RoleLawyer {
		t.Errorf("Unexpected principal: %+v", got)
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	cfg := testAuthConfig()

	// Create an expired token
	claims := Claims{
		UserID: "user-1",
		Email:  "ada@example.com",
		Role:   "client",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)), // Expired 1 hour ago
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(cfg.JWTSecret))

	router := gin.New()
	router.Use(AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d for expired token, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	cfg := testAuthConfig()
	clientToken, _, _ := GenerateToken("c1", "c@example.com", model.RoleClient, cfg)
	lawyerToken, _, _ := GenerateToken("l1", "l@example.com", model.RoleLawyer, cfg)

	router := gin.New()
	router.GET("/lawyer", AuthMiddleware(cfg), RequireRole(model.RoleLawyer), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{"lawyer allowed", lawyerToken, http.StatusOK},
		{"client forbidden", clientToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/lawyer", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestWebSocketAuth(t *testing.T) {
	cfg := testAuthConfig()
	token, _, _ := GenerateToken("user-1", "ada@example.com", model.RoleClient, cfg)

	tests := []struct {
		name           string
		required       bool
		query          string
		expectedStatus int
		expectedUser   string
	}{
		{"anonymous allowed", false, "", http.StatusOK, ""},
		{"anonymous rejected", true, "", http.StatusUnauthorized, ""},
		{"valid token", true, "?token=" + token, http.StatusOK, "user-1"},
		{"bad token", false, "?token=garbage", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user string
			router := gin.New()
			router.GET("/ws", WebSocketAuth(cfg, tt.required), func(c *gin.Context) {
				user = GetUserID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/ws"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if user != tt.expectedUser {
				t.Errorf("Expected user %q, got %q", tt.expectedUser, user)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	// Test with no user set
	if GetUserID(c) != "" {
		t.Error("Expected empty string for unset user id")
	}

	c.Set("user_id", "user-1")
	if GetUserID(c) != "user-1" {
		t.Errorf("Expected 'user-1', got '%s'", GetUserID(c))
	}
}

func TestGetRole(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetRole(c) != "" {
		t.Error("Expected empty role when unset")
	}

	c.Set("role", "admin")
	if GetRole(c) != model.RoleAdmin {
		t.Errorf("Expected 'admin', got '%s'", GetRole(c))
	}
}
