package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahulraut1220/LegalEase/middleware"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	Role                 string `json:"role"`
	Phone                string `json:"phone"`
	Specialization       string `json:"specialization"`
	BarAssociationNumber string `json:"barAssociationNumber"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expiresAt"`
}

func sessionResponse(s *service.Session) SessionResponse {
	return SessionResponse{
		User:      s.User,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.Format(time.RFC3339),
	}
}

// Register handles account creation
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	session, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		Role:                 model.Role(req.Role),
		Phone:                req.Phone,
		Specialization:       req.Specialization,
		BarAssociationNumber: req.BarAssociationNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session))
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

// Me returns the current user
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
