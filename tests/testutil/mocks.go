package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/oauth"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockSessionService mocks the SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, userID uuid.UUID, userAgent string, expiresAt time.Time) (*models.Session, error) {
	args := m.Called(ctx, userID, userAgent, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockOrganizationService mocks the OrganizationService
type MockOrganizationService struct {
	mock.Mock
}

func (m *MockOrganizationService) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*models.Organization, error) {
	args := m.Called(ctx, ownerID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) GetByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Organization), args.Error(1)
}

func (m *MockOrganizationService) CanView(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orgID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrganizationService) Update(ctx context.Context, orgID, actorID uuid.UUID, name, description string) (*models.Organization, error) {
	args := m.Called(ctx, orgID, actorID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationService) Delete(ctx context.Context, orgID, actorID uuid.UUID) error {
	args := m.Called(ctx, orgID, actorID)
	return args.Error(0)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, orgID, creatorID uuid.UUID, input services.TeamInput) (*models.Team, error) {
	args := m.Called(ctx, orgID, creatorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Team), args.Get(1).([]int), args.Error(2)
}

func (m *MockTeamService) Update(ctx context.Context, teamID uuid.UUID, input services.TeamInput) (*models.Team, error) {
	args := m.Called(ctx, teamID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Delete(ctx context.Context, teamID uuid.UUID) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

func (m *MockTeamService) GetRole(ctx context.Context, teamID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.UserToTeam, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserToTeam), args.Error(1)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

// MockSprintService mocks the SprintService
type MockSprintService struct {
	mock.Mock
}

func (m *MockSprintService) StartNextSprint(ctx context.Context, teamID uuid.UUID) (*models.SprintPointers, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SprintPointers), args.Error(1)
}

func (m *MockSprintService) CloseCurrentSprint(ctx context.Context, teamID uuid.UUID) (*models.SprintCloseResult, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SprintCloseResult), args.Error(1)
}

func (m *MockSprintService) CreateNextSprint(ctx context.Context, teamID uuid.UUID, title, description string) (*models.Sprint, error) {
	args := m.Called(ctx, teamID, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sprint), args.Error(1)
}

func (m *MockSprintService) CreateSprint(ctx context.Context, teamID uuid.UUID, title, description string) (*models.Sprint, error) {
	args := m.Called(ctx, teamID, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sprint), args.Error(1)
}

func (m *MockSprintService) GetCurrentSprint(ctx context.Context, teamID uuid.UUID) (*models.Sprint, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sprint), args.Error(1)
}

func (m *MockSprintService) GetSprint(ctx context.Context, teamID, sprintID uuid.UUID) (*models.Sprint, error) {
	args := m.Called(ctx, teamID, sprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sprint), args.Error(1)
}

func (m *MockSprintService) ListSprints(ctx context.Context, teamID uuid.UUID) ([]models.Sprint, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sprint), args.Error(1)
}

// MockTicketService mocks the TicketService
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Create(ctx context.Context, teamID, reporterID uuid.UUID, input services.TicketInput) (*models.Ticket, error) {
	args := m.Called(ctx, teamID, reporterID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) Get(ctx context.Context, teamID, ticketID uuid.UUID) (*models.Ticket, error) {
	args := m.Called(ctx, teamID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) List(ctx context.Context, teamID uuid.UUID, filter services.TicketFilter) ([]models.Ticket, error) {
	args := m.Called(ctx, teamID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketService) Update(ctx context.Context, teamID, ticketID uuid.UUID, update services.TicketUpdate) (*models.Ticket, error) {
	args := m.Called(ctx, teamID, ticketID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) Move(ctx context.Context, teamID, ticketID uuid.UUID, sprintID *uuid.UUID) (*models.Ticket, error) {
	args := m.Called(ctx, teamID, ticketID, sprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) SetStatus(ctx context.Context, teamID, ticketID uuid.UUID, status string) (*models.Ticket, error) {
	args := m.Called(ctx, teamID, ticketID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) Delete(ctx context.Context, teamID, ticketID uuid.UUID) error {
	args := m.Called(ctx, teamID, ticketID)
	return args.Error(0)
}

// MockInviteService mocks the InviteService
type MockInviteService struct {
	mock.Mock
}

func (m *MockInviteService) Send(ctx context.Context, teamID, inviterID uuid.UUID, email string, role int) (*models.TeamInvite, error) {
	args := m.Called(ctx, teamID, inviterID, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamInvite), args.Error(1)
}

func (m *MockInviteService) Resend(ctx context.Context, inviteID, actorID uuid.UUID) (*models.TeamInvite, error) {
	args := m.Called(ctx, inviteID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamInvite), args.Error(1)
}

func (m *MockInviteService) Accept(ctx context.Context, inviteID, userID uuid.UUID, userEmail string) (*models.UserToTeam, error) {
	args := m.Called(ctx, inviteID, userID, userEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserToTeam), args.Error(1)
}

func (m *MockInviteService) Decline(ctx context.Context, inviteID uuid.UUID, userEmail string) error {
	args := m.Called(ctx, inviteID, userEmail)
	return args.Error(0)
}

func (m *MockInviteService) Cancel(ctx context.Context, teamID, inviteID, actorID uuid.UUID) error {
	args := m.Called(ctx, teamID, inviteID, actorID)
	return args.Error(0)
}

func (m *MockInviteService) ListForEmail(ctx context.Context, email string) ([]models.TeamInvite, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamInvite), args.Error(1)
}

func (m *MockInviteService) ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamInvite, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamInvite), args.Error(1)
}

// MockWikiService mocks the WikiService
type MockWikiService struct {
	mock.Mock
}

func (m *MockWikiService) Create(ctx context.Context, teamID, userID uuid.UUID, title, content string) (*models.WikiPage, error) {
	args := m.Called(ctx, teamID, userID, title, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WikiPage), args.Error(1)
}

func (m *MockWikiService) Get(ctx context.Context, teamID, pageID uuid.UUID) (*models.WikiPage, error) {
	args := m.Called(ctx, teamID, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WikiPage), args.Error(1)
}

func (m *MockWikiService) List(ctx context.Context, teamID uuid.UUID) ([]models.WikiPage, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WikiPage), args.Error(1)
}

func (m *MockWikiService) Update(ctx context.Context, teamID, pageID uuid.UUID, title, content *string, expectedVersion int, userID uuid.UUID) (*models.WikiPage, error) {
	args := m.Called(ctx, teamID, pageID, title, content, expectedVersion, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WikiPage), args.Error(1)
}

func (m *MockWikiService) Delete(ctx context.Context, teamID, pageID uuid.UUID) error {
	args := m.Called(ctx, teamID, pageID)
	return args.Error(0)
}

// MockWikiRenderer mocks the WikiRenderer
type MockWikiRenderer struct {
	mock.Mock
}

func (m *MockWikiRenderer) Render(page *models.WikiPage) (string, error) {
	args := m.Called(page)
	return args.String(0), args.Error(1)
}

// MockDashboardService mocks the DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context, teamID, userID uuid.UUID) (*models.Dashboard, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

// PublishedEvent is one call recorded by RecordingHub
type PublishedEvent struct {
	TeamID uuid.UUID
	Type   string
	Data   any
}

// RecordingHub stands in for the sse Hub and remembers what was published
type RecordingHub struct {
	mu           sync.Mutex
	Events       []PublishedEvent
	Clients      []*sse.Client
	Unregistered []*sse.Client
}

func (h *RecordingHub) Register(client *sse.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Clients = append(h.Clients, client)
}

func (h *RecordingHub) Unregister(client *sse.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Unregistered = append(h.Unregistered, client)
}

func (h *RecordingHub) Publish(teamID uuid.UUID, eventType string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, PublishedEvent{TeamID: teamID, Type: eventType, Data: data})
}

// Types returns the published event types in order
func (h *RecordingHub) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, 0, len(h.Events))
	for _, e := range h.Events {
		types = append(types, e.Type)
	}
	return types
}

// Registered returns the clients registered so far
func (h *RecordingHub) Registered() []*sse.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*sse.Client(nil), h.Clients...)
}

// Removed returns the clients unregistered so far
func (h *RecordingHub) Removed() []*sse.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*sse.Client(nil), h.Unregistered...)
}
