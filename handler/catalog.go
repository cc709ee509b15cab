package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
	"github.com/rahulraut1220/LegalEase/service"
)

// CatalogHandler serves contract types and the lawyer directory
type CatalogHandler struct {
	contracts *service.ContractService
	types     service.ContractTypeRepository
}

func NewCatalogHandler(contracts *service.ContractService, types service.ContractTypeRepository) *CatalogHandler {
	return &CatalogHandler{contracts: contracts, types: types}
}

// Types lists every contract type
func (h *CatalogHandler) Types(c *gin.Context) {
	types, err := h.contracts.ListTypes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if types == nil {
		types = []*model.ContractType{}
	}

	c.JSON(http.StatusOK, gin.H{
		"contractTypes": types,
		"count":         len(types),
	})
}

// Type returns one contract type with its field definitions
func (h *CatalogHandler) Type(c *gin.Context) {
	ct, err := h.contracts.GetType(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contractType": ct})
}

// Lawyers lists the lawyers a client can pick from
func (h *CatalogHandler) Lawyers(c *gin.Context) {
	lawyers, err := h.contracts.ListLawyers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	parties := make([]*model.Party, 0, len(lawyers))
	for _, u := range lawyers {
		parties = append(parties, u.Party())
	}

	c.JSON(http.StatusOK, gin.H{
		"lawyers": parties,
		"count":   len(parties),
	})
}

// Seed replaces all contract types with the built-in catalogue
func (h *CatalogHandler) Seed(c *gin.Context) {
	ctx := c.Request.Context()
	types, err := service.SeedContractTypes(ctx, h.types)
	if err != nil {
		writeError(c, err)
		return
	}

	logger.Info(ctx, "contract types seeded", "count", len(types))
	c.JSON(http.StatusOK, gin.H{
		"message":       "Contract types seeded successfully",
		"contractTypes": types,
		"count":         len(types),
	})
}
