package handlers

import (
	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/middleware"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/dimitrije/tandem-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type TeamHandler struct {
	teamService TeamServiceInterface
	hub         EventHubInterface
	log         *logger.Logger
}

func NewTeamHandler(teamService TeamServiceInterface, hub EventHubInterface, log *logger.Logger) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		hub:         hub,
		log:         log,
	}
}

// Create makes a team inside an organization the caller owns. The caller
// becomes its first admin.
func (h *TeamHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.OrganizationID == uuid.Nil {
		c.BadRequest("organization_id is required")
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), req.OrganizationID, userID, services.TeamInput{
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to create team")
		return
	}

	_ = c.JSON(201, dto.NewTeamResponseWithRole(team, models.RoleAdmin))
}

func (h *TeamHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teams, roles, err := h.teamService.GetUserTeams(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "failed to get teams")
		return
	}

	response := make([]dto.TeamResponse, len(teams))
	for i := range teams {
		response[i] = dto.NewTeamResponseWithRole(&teams[i], roles[i])
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) Get(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	team, err := h.teamService.GetByID(c.Request.Context(), access.TeamID)
	if err != nil {
		respondError(c, h.log, err, "failed to get team")
		return
	}

	_ = c.JSON(200, dto.NewTeamResponseWithRole(team, access.Role))
}

func (h *TeamHandler) Update(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleManager)
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), access.TeamID, services.TeamInput{
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to update team")
		return
	}

	_ = c.JSON(200, dto.NewTeamResponseWithRole(team, access.Role))
}

func (h *TeamHandler) Delete(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleAdmin)
	if !ok {
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), access.TeamID); err != nil {
		respondError(c, h.log, err, "failed to delete team")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "team deleted"})
}

func (h *TeamHandler) GetMembers(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	members, err := h.teamService.GetMembers(c.Request.Context(), access.TeamID)
	if err != nil {
		respondError(c, h.log, err, "failed to get members")
		return
	}

	response := make([]dto.TeamMemberResponse, len(members))
	for i := range members {
		response[i] = dto.NewTeamMemberResponse(&members[i])
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) RemoveMember(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleAdmin)
	if !ok {
		return
	}

	memberID, ok := parseIDParam(c, "userId", "user")
	if !ok {
		return
	}

	h.removeMember(c, access.TeamID, memberID, "member removed")
}

// Leave removes the caller from the team. The last admin cannot leave.
func (h *TeamHandler) Leave(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	h.removeMember(c, access.TeamID, access.UserID, "left team")
}

func (h *TeamHandler) removeMember(c *drift.Context, teamID, memberID uuid.UUID, message string) {
	if err := h.teamService.RemoveMember(c.Request.Context(), teamID, memberID); err != nil {
		respondError(c, h.log, err, "failed to remove member")
		return
	}

	h.hub.Publish(teamID, sse.EventMemberLeft, map[string]uuid.UUID{"user_id": memberID})

	_ = c.JSON(200, dto.MessageResponse{Message: message})
}
