package handlers

import (
	"errors"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/metrics"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/dimitrije/tandem-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type SprintHandler struct {
	sprintService SprintServiceInterface
	teamService   TeamServiceInterface
	hub           EventHubInterface
	log           *logger.Logger
}

func NewSprintHandler(sprintService SprintServiceInterface, teamService TeamServiceInterface, hub EventHubInterface, log *logger.Logger) *SprintHandler {
	return &SprintHandler{
		sprintService: sprintService,
		teamService:   teamService,
		hub:           hub,
		log:           log,
	}
}

// GetCurrent returns the running sprint with its tickets.
func (h *SprintHandler) GetCurrent(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	sprint, err := h.sprintService.GetCurrentSprint(c.Request.Context(), access.TeamID)
	if err != nil {
		if errors.Is(err, services.ErrNoCurrentSprint) {
			c.NotFound(err.Error())
			return
		}
		respondError(c, h.log, err, "failed to get current sprint")
		return
	}

	_ = c.JSON(200, sprint)
}

// Create adds a sprint. With ?next it becomes the team's queued next sprint.
func (h *SprintHandler) Create(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleManager)
	if !ok {
		return
	}

	var req dto.CreateSprintRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := c.Request.Context()
	var (
		sprint *models.Sprint
		err    error
	)
	if c.Request.URL.Query().Has("next") {
		sprint, err = h.sprintService.CreateNextSprint(ctx, access.TeamID, req.Title, req.Description)
	} else {
		sprint, err = h.sprintService.CreateSprint(ctx, access.TeamID, req.Title, req.Description)
	}
	if err != nil {
		respondError(c, h.log, err, "failed to create sprint")
		return
	}

	metrics.SprintTransitions.WithLabelValues(metrics.ActionCreate).Inc()
	h.hub.Publish(access.TeamID, sse.EventSprintCreated, sprint)

	_ = c.JSON(201, sprint)
}

// Transition runs ?start or ?close on the team's sprint pointers.
func (h *SprintHandler) Transition(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleManager)
	if !ok {
		return
	}

	query := c.Request.URL.Query()
	ctx := c.Request.Context()

	switch {
	case query.Has("start"):
		pointers, err := h.sprintService.StartNextSprint(ctx, access.TeamID)
		if err != nil {
			respondError(c, h.log, err, "failed to start sprint")
			return
		}
		metrics.SprintTransitions.WithLabelValues(metrics.ActionStart).Inc()
		h.hub.Publish(access.TeamID, sse.EventSprintStarted, pointers)
		_ = c.JSON(200, pointers)

	case query.Has("close"):
		result, err := h.sprintService.CloseCurrentSprint(ctx, access.TeamID)
		if err != nil {
			respondError(c, h.log, err, "failed to close sprint")
			return
		}
		metrics.SprintTransitions.WithLabelValues(metrics.ActionClose).Inc()
		metrics.RolledOverTickets.Add(float64(result.RolledOverTickets))
		h.hub.Publish(access.TeamID, sse.EventSprintClosed, result)
		_ = c.JSON(200, result)

	default:
		c.BadRequest("specify ?start or ?close")
	}
}

func (h *SprintHandler) History(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	sprints, err := h.sprintService.ListSprints(c.Request.Context(), access.TeamID)
	if err != nil {
		respondError(c, h.log, err, "failed to list sprints")
		return
	}

	_ = c.JSON(200, sprints)
}

func (h *SprintHandler) Get(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	sprintID, ok := parseIDParam(c, "sprintId", "sprint")
	if !ok {
		return
	}

	sprint, err := h.sprintService.GetSprint(c.Request.Context(), access.TeamID, sprintID)
	if err != nil {
		respondError(c, h.log, err, "failed to get sprint")
		return
	}

	_ = c.JSON(200, sprint)
}
