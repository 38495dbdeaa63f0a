package dto

import (
	"time"

	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
)

type SendInviteRequest struct {
	Email string `json:"email"`
	Role  *int   `json:"role"`
}

type TeamInviteResponse struct {
	ID          uuid.UUID     `json:"id"`
	TeamID      uuid.UUID     `json:"team_id"`
	Email       string        `json:"email"`
	Role        int           `json:"role"`
	RoleName    string        `json:"role_name"`
	InvitedBy   *uuid.UUID    `json:"invited_by,omitempty"`
	EmailSentAt *time.Time    `json:"email_sent_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Team        *TeamResponse `json:"team,omitempty"`
}

// SendInviteResponse reports a stored invite. When the email could not be
// sent Warning says so and the invite can be re-sent.
type SendInviteResponse struct {
	Invite    TeamInviteResponse `json:"invite"`
	EmailSent bool               `json:"email_sent"`
	Warning   string             `json:"warning,omitempty"`
}

type AcceptInviteResponse struct {
	Team TeamResponse `json:"team"`
	Role int          `json:"role"`
}

func NewTeamInviteResponse(inv *models.TeamInvite) TeamInviteResponse {
	resp := TeamInviteResponse{
		ID:          inv.ID,
		TeamID:      inv.TeamID,
		Email:       inv.Email,
		Role:        inv.Role,
		RoleName:    models.RoleName(inv.Role),
		InvitedBy:   inv.InvitedBy,
		EmailSentAt: inv.EmailSentAt,
		CreatedAt:   inv.CreatedAt,
	}
	if inv.Team != nil {
		team := NewTeamResponse(inv.Team)
		resp.Team = &team
	}
	return resp
}
