package handlers

import (
	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/dimitrije/tandem-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// backlogParam is the sprintId value that means "no sprint".
const backlogParam = "none"

type TicketHandler struct {
	ticketService TicketServiceInterface
	teamService   TeamServiceInterface
	hub           EventHubInterface
	log           *logger.Logger
}

func NewTicketHandler(ticketService TicketServiceInterface, teamService TeamServiceInterface, hub EventHubInterface, log *logger.Logger) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		teamService:   teamService,
		hub:           hub,
		log:           log,
	}
}

// List supports ?sprintId=<id|none>, ?status= and ?assigneeId= filters.
func (h *TicketHandler) List(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	var filter services.TicketFilter
	if raw := c.QueryParam("sprintId"); raw != "" {
		sprintID, backlog, ok := parseSprintParam(c, raw)
		if !ok {
			return
		}
		filter.SprintID = sprintID
		filter.Backlog = backlog
	}
	filter.Status = c.QueryParam("status")
	if raw := c.QueryParam("assigneeId"); raw != "" {
		assigneeID, err := uuid.Parse(raw)
		if err != nil {
			c.BadRequest("invalid assignee id")
			return
		}
		filter.AssigneeID = &assigneeID
	}

	tickets, err := h.ticketService.List(c.Request.Context(), access.TeamID, filter)
	if err != nil {
		respondError(c, h.log, err, "failed to list tickets")
		return
	}

	_ = c.JSON(200, tickets)
}

func (h *TicketHandler) Create(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleMember)
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), access.TeamID, access.UserID, services.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		SprintID:    req.SprintID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to create ticket")
		return
	}

	h.hub.Publish(access.TeamID, sse.EventTicketCreated, ticket)

	_ = c.JSON(201, ticket)
}

func (h *TicketHandler) Get(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	ticketID, ok := parseIDParam(c, "ticketId", "ticket")
	if !ok {
		return
	}

	ticket, err := h.ticketService.Get(c.Request.Context(), access.TeamID, ticketID)
	if err != nil {
		respondError(c, h.log, err, "failed to get ticket")
		return
	}

	_ = c.JSON(200, ticket)
}

// Update edits a ticket. ?sprintId=<id|none> only reassigns the sprint and
// ?status= only changes the status; otherwise the JSON body is applied.
func (h *TicketHandler) Update(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleMember)
	if !ok {
		return
	}

	ticketID, ok := parseIDParam(c, "ticketId", "ticket")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	query := c.Request.URL.Query()
	var (
		ticket *models.Ticket
		err    error
	)

	switch {
	case query.Has("sprintId"):
		sprintID, _, ok := parseSprintParam(c, query.Get("sprintId"))
		if !ok {
			return
		}
		ticket, err = h.ticketService.Move(ctx, access.TeamID, ticketID, sprintID)

	case query.Has("status"):
		ticket, err = h.ticketService.SetStatus(ctx, access.TeamID, ticketID, query.Get("status"))

	default:
		var req dto.UpdateTicketRequest
		if bindErr := c.BindJSON(&req); bindErr != nil {
			c.BadRequest("invalid request body")
			return
		}
		ticket, err = h.ticketService.Update(ctx, access.TeamID, ticketID, services.TicketUpdate{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			AssigneeID:  req.AssigneeID,
			Unassign:    req.Unassign,
		})
	}
	if err != nil {
		respondError(c, h.log, err, "failed to update ticket")
		return
	}

	h.hub.Publish(access.TeamID, sse.EventTicketUpdated, ticket)

	_ = c.JSON(200, ticket)
}

func (h *TicketHandler) Delete(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleMember)
	if !ok {
		return
	}

	ticketID, ok := parseIDParam(c, "ticketId", "ticket")
	if !ok {
		return
	}

	if err := h.ticketService.Delete(c.Request.Context(), access.TeamID, ticketID); err != nil {
		respondError(c, h.log, err, "failed to delete ticket")
		return
	}

	h.hub.Publish(access.TeamID, sse.EventTicketDeleted, dto.DeletedResponse{ID: ticketID})

	_ = c.JSON(200, dto.DeletedResponse{ID: ticketID})
}

// parseSprintParam reads a sprintId value. "none" selects the backlog.
func parseSprintParam(c *drift.Context, raw string) (*uuid.UUID, bool, bool) {
	if raw == backlogParam {
		return nil, true, true
	}
	sprintID, err := uuid.Parse(raw)
	if err != nil {
		c.BadRequest("invalid sprint id")
		return nil, false, false
	}
	return &sprintID, false, true
}
