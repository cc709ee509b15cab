package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rahulraut1220/LegalEase/config"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
	"github.com/rahulraut1220/LegalEase/service"
)

const (
	userIDKey = "user_id"
	emailKey  = "email"
	roleKey   = "role"
)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken generates a new JWT token for a user
func GenerateToken(userID, email string, role model.Role, cfg *config.AuthConfig) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// TokenIssuer adapts GenerateToken to the auth service
func TokenIssuer(cfg *config.AuthConfig) service.TokenIssuer {
	return func(u *model.User) (string, time.Time, error) {
		return GenerateToken(u.ID, u.Email, u.Role, cfg)
	}
}

// ParseToken validates tokenString and returns its claims
func ParseToken(tokenString string, cfg *config.AuthConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthMiddleware validates JWT token and extracts user info
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := ParseToken(parts[1], cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// WebSocketAuth reads the token from the token query parameter, since
// browsers cannot set headers on a WebSocket handshake. With required unset,
// anonymous connections pass through.
func WebSocketAuth(cfg *config.AuthConfig, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
				return
			}
			c.Next()
			return
		}

		claims, err := ParseToken(token, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole rejects principals whose role is not listed
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, GetRole(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied for this role"})
			return
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(userIDKey, claims.UserID)
	c.Set(emailKey, claims.Email)
	c.Set(roleKey, claims.Role)

	ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, logger.RoleKey, claims.Role)
	c.Request = c.Request.WithContext(ctx)
}

// GetUserID gets the user id from context
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetEmail gets the email from context
func GetEmail(c *gin.Context) string {
	return c.GetString(emailKey)
}

// GetRole gets the role from context
func GetRole(c *gin.Context) model.Role {
	return model.Role(c.GetString(roleKey))
}

// GetPrincipal returns the authenticated caller
func GetPrincipal(c *gin.Context) service.Principal {
	return service.Principal{UserID: GetUserID(c), Role: GetRole(c)}
}
