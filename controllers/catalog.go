package controllers

import (
	"net/http"
	"strconv"

	"iris-api/services"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

func (h *CatalogController) GetCategories(c *gin.Context) {
	items, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

// GetSubCategories handles GET /improvement-subcategories?category_id=.
func (h *CatalogController) GetSubCategories(c *gin.Context) {
	var categoryID uint64
	if raw := c.Query("category_id"); raw != "" {
		var err error
		categoryID, err = strconv.ParseUint(raw, 10, 32)
		if err != nil {
			badRequest(c, "category_id must be a positive integer")
			return
		}
	}
	items, err := h.catalog.SubCategories(c.Request.Context(), uint(categoryID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (h *CatalogController) GetReviewParameters(c *gin.Context) {
	items, err := h.catalog.ReviewParameters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}
