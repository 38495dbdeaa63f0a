package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateOrganization creates an organization owned by owner
func (f *Fixtures) CreateOrganization(t *testing.T, owner *models.User) *models.Organization {
	t.Helper()
	f.counter++

	org := &models.Organization{
		Name:    fmt.Sprintf("Test Org %d", f.counter),
		OwnerID: owner.ID,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO organizations (name, description, owner_id)
		VALUES ($1, '', $2)
		RETURNING id, created_at, updated_at
	`, org.Name, org.OwnerID).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create organization: %v", err)
	}

	return org
}

// CreateTeam creates a team in org and makes admin its admin member
func (f *Fixtures) CreateTeam(t *testing.T, org *models.Organization, admin *models.User) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		OrganizationID: org.ID,
		Name:           fmt.Sprintf("Test Team %d", f.counter),
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO teams (organization_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, team.OrganizationID, team.Name).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	f.AddTeamMember(t, team, admin, models.RoleAdmin)
	return team
}

// AddTeamMember adds user to team with role
func (f *Fixtures) AddTeamMember(t *testing.T, team *models.Team, user *models.User, role int) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO user_to_team (user_id, team_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, team_id) DO UPDATE SET role = EXCLUDED.role
	`, user.ID, team.ID, role)
	if err != nil {
		t.Fatalf("failed to add team member: %v", err)
	}
}

// CreateSprint inserts a sprint without touching the team's pointers
func (f *Fixtures) CreateSprint(t *testing.T, team *models.Team) *models.Sprint {
	t.Helper()
	f.counter++

	sprint := &models.Sprint{
		TeamID: team.ID,
		Title:  fmt.Sprintf("Sprint %d", f.counter),
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO sprints (team_id, title)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, sprint.TeamID, sprint.Title).Scan(&sprint.ID, &sprint.CreatedAt, &sprint.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create sprint: %v", err)
	}

	return sprint
}

// CreateTicket creates an OPEN ticket. A nil sprintID puts it in the backlog.
func (f *Fixtures) CreateTicket(t *testing.T, team *models.Team, reporter *models.User, sprintID *uuid.UUID) *models.Ticket {
	t.Helper()
	f.counter++

	ticket := &models.Ticket{
		TeamID:     team.ID,
		SprintID:   sprintID,
		Title:      fmt.Sprintf("Ticket %d", f.counter),
		Status:     models.TicketStatusOpen,
		Priority:   models.TicketPriorityNone,
		ReporterID: reporter.ID,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO tickets (team_id, sprint_id, title, status, priority, reporter_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, ticket.TeamID, ticket.SprintID, ticket.Title, ticket.Status, ticket.Priority, ticket.ReporterID).Scan(
		&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}

	return ticket
}

// SetTicketStatus forces a ticket's status
func (f *Fixtures) SetTicketStatus(t *testing.T, ticket *models.Ticket, status string) {
	t.Helper()

	if _, err := f.db.Pool.Exec(context.Background(),
		`UPDATE tickets SET status = $1 WHERE id = $2`, status, ticket.ID); err != nil {
		t.Fatalf("failed to set ticket status: %v", err)
	}
	ticket.Status = status
}
