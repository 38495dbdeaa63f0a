package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/oauth"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// SessionServiceInterface defines the methods used by handlers from SessionService
type SessionServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, userAgent string, expiresAt time.Time) (*models.Session, error)
	Revoke(ctx context.Context, sessionID uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// OrganizationServiceInterface defines the methods used by handlers from OrganizationService
type OrganizationServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*models.Organization, error)
	GetByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error)
	CanView(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
	Update(ctx context.Context, orgID, actorID uuid.UUID, name, description string) (*models.Organization, error)
	Delete(ctx context.Context, orgID, actorID uuid.UUID) error
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, orgID, creatorID uuid.UUID, input services.TeamInput) (*models.Team, error)
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []int, error)
	Update(ctx context.Context, teamID uuid.UUID, input services.TeamInput) (*models.Team, error)
	Delete(ctx context.Context, teamID uuid.UUID) error
	GetRole(ctx context.Context, teamID, userID uuid.UUID) (int, error)
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.UserToTeam, error)
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
}

// SprintServiceInterface defines the methods used by handlers from SprintService
type SprintServiceInterface interface {
	StartNextSprint(ctx context.Context, teamID uuid.UUID) (*models.SprintPointers, error)
	CloseCurrentSprint(ctx context.Context, teamID uuid.UUID) (*models.SprintCloseResult, error)
	CreateNextSprint(ctx context.Context, teamID uuid.UUID, title, description string) (*models.Sprint, error)
	CreateSprint(ctx context.Context, teamID uuid.UUID, title, description string) (*models.Sprint, error)
	GetCurrentSprint(ctx context.Context, teamID uuid.UUID) (*models.Sprint, error)
	GetSprint(ctx context.Context, teamID, sprintID uuid.UUID) (*models.Sprint, error)
	ListSprints(ctx context.Context, teamID uuid.UUID) ([]models.Sprint, error)
}

// TicketServiceInterface defines the methods used by handlers from TicketService
type TicketServiceInterface interface {
	Create(ctx context.Context, teamID, reporterID uuid.UUID, input services.TicketInput) (*models.Ticket, error)
	Get(ctx context.Context, teamID, ticketID uuid.UUID) (*models.Ticket, error)
	List(ctx context.Context, teamID uuid.UUID, filter services.TicketFilter) ([]models.Ticket, error)
	Update(ctx context.Context, teamID, ticketID uuid.UUID, update services.TicketUpdate) (*models.Ticket, error)
	Move(ctx context.Context, teamID, ticketID uuid.UUID, sprintID *uuid.UUID) (*models.Ticket, error)
	SetStatus(ctx context.Context, teamID, ticketID uuid.UUID, status string) (*models.Ticket, error)
	Delete(ctx context.Context, teamID, ticketID uuid.UUID) error
}

// InviteServiceInterface defines the methods used by handlers from InviteService
type InviteServiceInterface interface {
	Send(ctx context.Context, teamID, inviterID uuid.UUID, email string, role int) (*models.TeamInvite, error)
	Resend(ctx context.Context, inviteID, actorID uuid.UUID) (*models.TeamInvite, error)
	Accept(ctx context.Context, inviteID, userID uuid.UUID, userEmail string) (*models.UserToTeam, error)
	Decline(ctx context.Context, inviteID uuid.UUID, userEmail string) error
	Cancel(ctx context.Context, teamID, inviteID, actorID uuid.UUID) error
	ListForEmail(ctx context.Context, email string) ([]models.TeamInvite, error)
	ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamInvite, error)
}

// WikiServiceInterface defines the methods used by handlers from WikiService
type WikiServiceInterface interface {
	Create(ctx context.Context, teamID, userID uuid.UUID, title, content string) (*models.WikiPage, error)
	Get(ctx context.Context, teamID, pageID uuid.UUID) (*models.WikiPage, error)
	List(ctx context.Context, teamID uuid.UUID) ([]models.WikiPage, error)
	Update(ctx context.Context, teamID, pageID uuid.UUID, title, content *string, expectedVersion int, userID uuid.UUID) (*models.WikiPage, error)
	Delete(ctx context.Context, teamID, pageID uuid.UUID) error
}

// WikiRendererInterface turns page markdown into sanitized HTML.
type WikiRendererInterface interface {
	Render(page *models.WikiPage) (string, error)
}

// DashboardServiceInterface defines the methods used by handlers from DashboardService
type DashboardServiceInterface interface {
	Summary(ctx context.Context, teamID, userID uuid.UUID) (*models.Dashboard, error)
}

// EventHubInterface defines the methods used by handlers from the sse Hub
type EventHubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	Publish(teamID uuid.UUID, eventType string, data any)
}
