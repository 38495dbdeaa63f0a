package handlers

import (
	"errors"
	"net/http"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/metrics"
	"github.com/dimitrije/tandem-api/internal/middleware"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/dimitrije/tandem-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type InviteHandler struct {
	inviteService InviteServiceInterface
	teamService   TeamServiceInterface
	userService   UserServiceInterface
	hub           EventHubInterface
	log           *logger.Logger
}

func NewInviteHandler(inviteService InviteServiceInterface, teamService TeamServiceInterface, userService UserServiceInterface, hub EventHubInterface, log *logger.Logger) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		teamService:   teamService,
		userService:   userService,
		hub:           hub,
		log:           log,
	}
}

// Send invites an email address to the team. The inviter must be a member
// and may only grant a role below their own.
func (h *InviteHandler) Send(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, ok := parseIDParam(c, "teamId", "team")
	if !ok {
		return
	}

	var req dto.SendInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	// Field checks happen in the service after membership, so non-members
	// get 403 whatever they send. An absent role fails there as out of range.
	role := -1
	if req.Role != nil {
		role = *req.Role
	}

	invite, err := h.inviteService.Send(c.Request.Context(), teamID, userID, req.Email, role)
	h.respondDelivery(c, invite, err, http.StatusCreated, "failed to send invite")
}

// Resend retries the email for a stored invite.
func (h *InviteHandler) Resend(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	inviteID, ok := parseIDParam(c, "inviteId", "invite")
	if !ok {
		return
	}

	invite, err := h.inviteService.Resend(c.Request.Context(), inviteID, userID)
	h.respondDelivery(c, invite, err, http.StatusOK, "failed to resend invite")
}

// respondDelivery reports the outcome of storing and mailing an invite. A
// delivery failure still returns the invite so the client can offer a
// resend.
func (h *InviteHandler) respondDelivery(c *drift.Context, invite *models.TeamInvite, err error, status int, fallback string) {
	var deliveryErr *services.InviteDeliveryError
	if errors.As(err, &deliveryErr) && invite != nil {
		metrics.Invites.WithLabelValues(metrics.InviteFailed).Inc()
		h.log.Error("invite email delivery failed", "invite_id", invite.ID, "error", deliveryErr.Err)
		_ = c.JSON(http.StatusInternalServerError, map[string]any{
			"error":  "invite saved but the email could not be sent; it can be re-sent",
			"invite": dto.NewTeamInviteResponse(invite),
		})
		return
	}
	if err != nil {
		respondError(c, h.log, err, fallback)
		return
	}

	resp := dto.SendInviteResponse{
		Invite:    dto.NewTeamInviteResponse(invite),
		EmailSent: invite.EmailSentAt != nil,
	}
	if resp.EmailSent {
		metrics.Invites.WithLabelValues(metrics.InviteDelivered).Inc()
	} else {
		metrics.Invites.WithLabelValues(metrics.InviteSkipped).Inc()
		resp.Warning = "email delivery is not configured; share the invite manually"
	}
	_ = c.JSON(status, resp)
}

// accountEmail returns the session user's current email. The token keeps the
// email it was issued with, and a later login may have changed it.
func (h *InviteHandler) accountEmail(c *drift.Context) (uuid.UUID, string, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, "", false
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if errors.Is(err, services.ErrNotFound) {
		c.Unauthorized("not authenticated")
		return uuid.Nil, "", false
	}
	if err != nil {
		respondError(c, h.log, err, "failed to load user")
		return uuid.Nil, "", false
	}
	return userID, user.Email, true
}

// Accept joins the session user to the invite's team.
func (h *InviteHandler) Accept(c *drift.Context) {
	userID, email, ok := h.accountEmail(c)
	if !ok {
		return
	}

	inviteID, err := uuid.Parse(c.QueryParam("inviteId"))
	if err != nil {
		c.BadRequest("invalid invite id")
		return
	}

	membership, err := h.inviteService.Accept(c.Request.Context(), inviteID, userID, email)
	if err != nil {
		respondError(c, h.log, err, "failed to accept invite")
		return
	}

	h.hub.Publish(membership.TeamID, sse.EventMemberJoined, map[string]any{
		"user_id": membership.UserID,
		"role":    membership.Role,
	})

	resp := dto.AcceptInviteResponse{Role: membership.Role}
	if membership.Team != nil {
		resp.Team = dto.NewTeamResponseWithRole(membership.Team, membership.Role)
	}
	_ = c.JSON(200, resp)
}

func (h *InviteHandler) Decline(c *drift.Context) {
	_, email, ok := h.accountEmail(c)
	if !ok {
		return
	}

	inviteID, err := uuid.Parse(c.QueryParam("inviteId"))
	if err != nil {
		c.BadRequest("invalid invite id")
		return
	}

	if err := h.inviteService.Decline(c.Request.Context(), inviteID, email); err != nil {
		respondError(c, h.log, err, "failed to decline invite")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "invite declined"})
}

// ListMine returns the invites addressed to the session user's email.
func (h *InviteHandler) ListMine(c *drift.Context) {
	_, email, ok := h.accountEmail(c)
	if !ok {
		return
	}

	invites, err := h.inviteService.ListForEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.log, err, "failed to list invites")
		return
	}

	_ = c.JSON(200, inviteResponses(invites))
}

func (h *InviteHandler) ListForTeam(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleMember)
	if !ok {
		return
	}

	invites, err := h.inviteService.ListForTeam(c.Request.Context(), access.TeamID)
	if err != nil {
		respondError(c, h.log, err, "failed to list invites")
		return
	}

	_ = c.JSON(200, inviteResponses(invites))
}

func (h *InviteHandler) Cancel(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	inviteID, ok := parseIDParam(c, "inviteId", "invite")
	if !ok {
		return
	}

	if err := h.inviteService.Cancel(c.Request.Context(), access.TeamID, inviteID, access.UserID); err != nil {
		respondError(c, h.log, err, "failed to cancel invite")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "invite cancelled"})
}

func inviteResponses(invites []models.TeamInvite) []dto.TeamInviteResponse {
	response := make([]dto.TeamInviteResponse, len(invites))
	for i := range invites {
		response[i] = dto.NewTeamInviteResponse(&invites[i])
	}
	return response
}
