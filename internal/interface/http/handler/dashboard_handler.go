package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-listings/internal/interface/http/dto"
	"github.com/ignatzorin/marketplace-listings/internal/interface/http/response"
	"github.com/ignatzorin/marketplace-listings/internal/usecase/dashboard"
)

type DashboardHandler struct {
	dashboardUC *dashboard.SellerDashboardUseCase
}

func NewDashboardHandler(dashboardUC *dashboard.SellerDashboardUseCase) *DashboardHandler {
	return &DashboardHandler{dashboardUC: dashboardUC}
}

// GetDashboard GET /dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.dashboardUC.Execute(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDashboardResponse(summary))
}
