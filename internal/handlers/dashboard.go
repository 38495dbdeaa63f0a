package handlers

import (
	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/m1z23r/drift/pkg/drift"
)

type DashboardHandler struct {
	dashboardService DashboardServiceInterface
	teamService      TeamServiceInterface
	log              *logger.Logger
}

func NewDashboardHandler(dashboardService DashboardServiceInterface, teamService TeamServiceInterface, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		teamService:      teamService,
		log:              log,
	}
}

func (h *DashboardHandler) Get(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), access.TeamID, access.UserID)
	if err != nil {
		respondError(c, h.log, err, "failed to load dashboard")
		return
	}

	_ = c.JSON(200, summary)
}
