package dto

import (
	"time"

	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
)

type CreateTeamRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Icon           string    `json:"icon"`
	Description    string    `json:"description"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type TeamResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organization_id"`
	Name            string     `json:"name"`
	Icon            string     `json:"icon"`
	Description     string     `json:"description"`
	CurrentSprintID *uuid.UUID `json:"current_sprint_id"`
	NextSprintID    *uuid.UUID `json:"next_sprint_id"`
	Role            *int       `json:"role,omitempty"`
	RoleName        string     `json:"role_name,omitempty"`
}

type TeamMemberResponse struct {
	UserID   uuid.UUID     `json:"user_id"`
	Role     int           `json:"role"`
	RoleName string        `json:"role_name"`
	JoinedAt time.Time     `json:"joined_at"`
	User     *UserResponse `json:"user,omitempty"`
}

func NewTeamResponse(t *models.Team) TeamResponse {
	return TeamResponse{
		ID:              t.ID,
		OrganizationID:  t.OrganizationID,
		Name:            t.Name,
		Icon:            t.Icon,
		Description:     t.Description,
		CurrentSprintID: t.CurrentSprintID,
		NextSprintID:    t.NextSprintID,
	}
}

// NewTeamResponseWithRole includes the caller's role in the team.
func NewTeamResponseWithRole(t *models.Team, role int) TeamResponse {
	resp := NewTeamResponse(t)
	resp.Role = &role
	resp.RoleName = models.RoleName(role)
	return resp
}

func NewTeamMemberResponse(m *models.UserToTeam) TeamMemberResponse {
	resp := TeamMemberResponse{
		UserID:   m.UserID,
		Role:     m.Role,
		RoleName: models.RoleName(m.Role),
		JoinedAt: m.CreatedAt,
	}
	if m.User != nil {
		u := NewUserResponse(m.User)
		resp.User = &u
	}
	return resp
}
