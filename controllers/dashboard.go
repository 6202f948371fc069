package controllers

import (
	"net/http"

	"iris-api/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// GetStats returns the landing page counters.
func (h *DashboardController) GetStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

func (h *DashboardController) GetActiveChallenges(c *gin.Context) {
	items, err := h.dashboard.ActiveChallenges(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}
