package models

import (
	"time"

	"github.com/google/uuid"
)

// Team roles. A lower number carries more privilege.
const (
	RoleAdmin   = 0
	RoleManager = 1
	RoleMember  = 2
	RoleViewer  = 3
)

type Team struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organization_id"`
	Name            string     `json:"name"`
	Icon            string     `json:"icon"`
	Description     string     `json:"description"`
	CurrentSprintID *uuid.UUID `json:"current_sprint_id"`
	NextSprintID    *uuid.UUID `json:"next_sprint_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// UserToTeam is a membership row: the role a user holds in a team.
type UserToTeam struct {
	UserID    uuid.UUID `json:"user_id"`
	TeamID    uuid.UUID `json:"team_id"`
	Role      int       `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
	Team      *Team     `json:"team,omitempty"`
}

type TeamInvite struct {
	ID          uuid.UUID  `json:"id"`
	TeamID      uuid.UUID  `json:"team_id"`
	Email       string     `json:"email"`
	Role        int        `json:"role"`
	InvitedBy   *uuid.UUID `json:"invited_by,omitempty"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Team        *Team      `json:"team,omitempty"`
}

func RoleName(role int) string {
	switch role {
	case RoleAdmin:
		return "admin"
	case RoleManager:
		return "manager"
	case RoleMember:
		return "member"
	case RoleViewer:
		return "viewer"
	default:
		return "unknown"
	}
}

func ValidRole(role int) bool {
	return role >= RoleAdmin && role <= RoleViewer
}
