package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/splicerhq/groupbuy_api/internal/service"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// DashboardHandler serves the authenticated user's deal overview.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard handles GET /v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
		return
	}
	utils.Success(c, 200, "Dashboard retrieved", dashboard)
}
