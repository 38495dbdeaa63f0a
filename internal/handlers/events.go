package handlers

import (
	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
)

type EventsHandler struct {
	hub         EventHubInterface
	teamService TeamServiceInterface
	userService UserServiceInterface
	log         *logger.Logger
}

func NewEventsHandler(hub EventHubInterface, teamService TeamServiceInterface, userService UserServiceInterface, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		hub:         hub,
		teamService: teamService,
		userService: userService,
		log:         log,
	}
}

// Stream sends the team's board events as Server-Sent Events until the
// client disconnects.
func (h *EventsHandler) Stream(c *drift.Context) {
	access, ok := requireTeamRole(c, h.teamService, h.log, models.RoleViewer)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userName := ""
	if user, err := h.userService.GetByID(ctx, access.UserID); err == nil {
		userName = user.Name
	}

	sseCtx := c.SSE()
	client := sse.NewClient(access.TeamID, access.UserID, userName)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	_ = sseCtx.SendJSON(map[string]string{
		"client_id": client.ID,
		"team_id":   access.TeamID.String(),
	}, "connected", "")

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
