package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rahulraut1220/LegalEase/config"
	"github.com/rahulraut1220/LegalEase/middleware"
	"github.com/rahulraut1220/LegalEase/model"
)

// Handlers groups everything mounted under /api
type Handlers struct {
	Auth      *AuthHandler
	Contracts *ContractHandler
	Catalog   *CatalogHandler
}

// Register mounts the REST routes on api
func Register(api *gin.RouterGroup, authCfg *config.AuthConfig, h Handlers) {
	client := middleware.RequireRole(model.RoleClient)
	lawyer := middleware.RequireRole(model.RoleLawyer)
	admin := middleware.RequireRole(model.RoleAdmin)

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/contracts/types", h.Catalog.Types)
	api.GET("/contracts/types/:id", h.Catalog.Type)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authCfg))
	{
		protected.GET("/auth/me", h.Auth.Me)

		protected.GET("/contracts/lawyers", client, h.Catalog.Lawyers)
		protected.POST("/contracts/submit", client, h.Contracts.Submit)
		protected.GET("/contracts/my", client, h.Contracts.Mine)
		protected.GET("/contracts/:id", h.Contracts.Get)
		protected.GET("/contracts/:id/download", h.Contracts.Download)

		lawyers := protected.Group("/contracts/lawyer", lawyer)
		lawyers.GET("/pending", h.Contracts.Pending)
		lawyers.GET("/signed", h.Contracts.Signed)
		lawyers.GET("/:id", h.Contracts.GetForLawyer)
		lawyers.PUT("/:id", h.Contracts.UpdateStatus)
		lawyers.PATCH("/:id", h.Contracts.UpdateStatus)
		lawyers.POST("/:id/sign", h.Contracts.Sign)

		protected.POST("/admin/seed", admin, h.Catalog.Seed)
	}
}
