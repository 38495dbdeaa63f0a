package handlers

import (
	"context"
	"errors"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/middleware"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type roleGetter interface {
	GetRole(ctx context.Context, teamID, userID uuid.UUID) (int, error)
}

// teamAccess is the caller's standing in the team named by the route.
type teamAccess struct {
	TeamID uuid.UUID
	UserID uuid.UUID
	Role   int
}

// requireTeamRole resolves :teamId and checks the caller holds at least the
// required role. Non-members get a 404 so team ids do not leak. It writes
// the response and returns false when access is denied.
func requireTeamRole(c *drift.Context, teams roleGetter, log *logger.Logger, required int) (*teamAccess, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return nil, false
	}

	teamID, err := uuid.Parse(c.Param("teamId"))
	if err != nil {
		c.BadRequest("invalid team id")
		return nil, false
	}

	role, err := teams.GetRole(c.Request.Context(), teamID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotTeamMember) {
			c.NotFound(services.ErrTeamNotFound.Error())
			return nil, false
		}
		respondError(c, log, err, "failed to check team role")
		return nil, false
	}

	if !services.HasRole(role, required) {
		c.Forbidden(services.ErrInsufficientRole.Error())
		return nil, false
	}

	return &teamAccess{TeamID: teamID, UserID: userID, Role: role}, true
}

func parseIDParam(c *drift.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.BadRequest("invalid " + label + " id")
		return uuid.Nil, false
	}
	return id, true
}
