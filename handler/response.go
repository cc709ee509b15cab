package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
	"github.com/rahulraut1220/LegalEase/service"
)

var kindStatus = map[service.Kind]int{
	service.KindNotFound:     http.StatusNotFound,
	service.KindValidation:   http.StatusBadRequest,
	service.KindUnauthorized: http.StatusForbidden,
	service.KindConflict:     http.StatusConflict,
}

// writeError renders err as {"error": ..., "fields": [...]}. Anything that is
// not a request failure is logged and hidden behind a generic 500.
func writeError(c *gin.Context, err error) {
	var e *service.Error
	if errors.As(err, &e) {
		body := gin.H{"error": e.Message}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		status, ok := kindStatus[e.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, body)
		return
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	_ = c.Error(err)
	logger.Error(c.Request.Context(), "request failed", "route", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
