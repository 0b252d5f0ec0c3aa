package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/navisol/werf/internal/service"
)

// DashboardHandler serves the overview route.
type DashboardHandler struct {
	svc *service.DashboardService
}

// NewDashboardHandler creates the dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Overview returns the landing-page counters.
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.svc.GetOverview(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, overview)
}
