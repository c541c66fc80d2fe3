package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/demandcast/forecast-backend/internal/data/repos/catalog"
	"github.com/demandcast/forecast-backend/internal/http/response"
	"github.com/demandcast/forecast-backend/internal/platform/dbctx"
)

type CatalogHandler struct {
	catalogRepo catalog.CatalogRepo
	promoRepo   catalog.PromotionRepo
}

func NewCatalogHandler(catalogRepo catalog.CatalogRepo, promoRepo catalog.PromotionRepo) *CatalogHandler {
	return &CatalogHandler{catalogRepo: catalogRepo, promoRepo: promoRepo}
}

// GET /api/v1/catalog/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.catalogRepo.ListCategories(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": cats})
}

// GET /api/v1/catalog/products?category_id=CAT_01
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogRepo.ListProducts(dbctx.New(c.Request.Context()), c.Query("category_id"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": products})
}

// GET /api/v1/catalog/promotions?category_id=CAT_01
func (h *CatalogHandler) ListPromotions(c *gin.Context) {
	dbc := dbctx.New(c.Request.Context())
	categoryID := c.Query("category_id")

	if categoryID != "" {
		promos, err := h.promoRepo.ListForCategory(dbc, categoryID)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"promotions": promos})
		return
	}

	promos, err := h.promoRepo.ListAll(dbc)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"promotions": promos})
}
