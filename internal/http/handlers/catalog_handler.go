package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-listings/internal/catalog"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/pkg/apperror"
)

type CatalogHandler struct {
	catalog *catalog.Registry
}

func NewCatalogHandler(registry *catalog.Registry) *CatalogHandler {
	return &CatalogHandler{catalog: registry}
}

// ListCategories GET /catalog/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	response.Success(c, gin.H{"categories": h.catalog.Categories()})
}

// ListSubcategories GET /catalog/categories/:name/subcategories
func (h *CatalogHandler) ListSubcategories(c *gin.Context) {
	primary := c.Param("name")
	if !h.catalog.HasPrimary(primary) {
		response.Error(c, apperror.New(apperror.ErrCodeNotFound, "категория не найдена"))
		return
	}
	response.Success(c, gin.H{
		"category":      primary,
		"subcategories": h.catalog.Subcategories(primary),
	})
}
