package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sprintColumns = `id, team_id, title, description, completed, created_at, updated_at`

// SprintService owns the sprint lifecycle of a team: the current sprint being
// worked, the queued next sprint and the rollover of open tickets on close.
// Every transition locks the team row so concurrent calls serialize.
type SprintService struct {
	db *database.DB
}

func NewSprintService(db *database.DB) *SprintService {
	return &SprintService{db: db}
}

func scanSprint(row pgx.Row, sprint *models.Sprint) error {
	return row.Scan(
		&sprint.ID, &sprint.TeamID, &sprint.Title, &sprint.Description,
		&sprint.Completed, &sprint.CreatedAt, &sprint.UpdatedAt,
	)
}

// lockSprintPointers reads the team's sprint pointers and holds the row lock
// until tx ends.
func lockSprintPointers(ctx context.Context, tx pgx.Tx, teamID uuid.UUID) (*models.SprintPointers, error) {
	ptrs := models.SprintPointers{TeamID: teamID}
	err := tx.QueryRow(ctx, `
		SELECT current_sprint_id, next_sprint_id FROM teams WHERE id = $1 FOR UPDATE
	`, teamID).Scan(&ptrs.CurrentSprintID, &ptrs.NextSprintID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team sprints: %w", err)
	}
	return &ptrs, nil
}

func insertSprint(ctx context.Context, tx pgx.Tx, teamID uuid.UUID, title, description string) (*models.Sprint, error) {
	var sprint models.Sprint
	err := scanSprint(tx.QueryRow(ctx, `
		INSERT INTO sprints (team_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING `+sprintColumns,
		teamID, title, description), &sprint)
	if err != nil {
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}
	return &sprint, nil
}

// StartNextSprint promotes the queued next sprint to current and clears the
// next pointer. An existing current sprint is replaced without being closed.
func (s *SprintService) StartNextSprint(ctx context.Context, teamID uuid.UUID) (*models.SprintPointers, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ptrs, err := lockSprintPointers(ctx, tx, teamID)
	if err != nil {
		return nil, err
	}
	if ptrs.NextSprintID == nil {
		return nil, ErrNoNextSprint
	}

	_, err = tx.Exec(ctx, `
		UPDATE teams SET current_sprint_id = $1, next_sprint_id = NULL, updated_at = NOW()
		WHERE id = $2
	`, *ptrs.NextSprintID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to start sprint: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.SprintPointers{TeamID: teamID, CurrentSprintID: ptrs.NextSprintID}, nil
}

// CloseCurrentSprint completes the current sprint and rolls every ticket that
// is not CLOSED over to the next sprint, creating a placeholder next sprint
// when none is queued. CLOSED tickets stay on the completed sprint. All steps
// commit together or not at all.
func (s *SprintService) CloseCurrentSprint(ctx context.Context, teamID uuid.UUID) (*models.SprintCloseResult, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ptrs, err := lockSprintPointers(ctx, tx, teamID)
	if err != nil {
		return nil, err
	}
	if ptrs.CurrentSprintID == nil {
		return nil, ErrNoCurrentSprint
	}
	closedID := *ptrs.CurrentSprintID

	_, err = tx.Exec(ctx, `
		UPDATE sprints SET completed = TRUE, updated_at = NOW()
		WHERE id = $1
	`, closedID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete sprint: %w", err)
	}

	result := &models.SprintCloseResult{ClosedSprintID: closedID}

	targetID := ptrs.NextSprintID
	if targetID == nil {
		placeholder, err := insertSprint(ctx, tx, teamID, models.PlaceholderSprintTitle, models.PlaceholderSprintDescription)
		if err != nil {
			return nil, err
		}
		targetID = &placeholder.ID
		result.PlaceholderCreated = true
	}

	moved, err := tx.Exec(ctx, `
		UPDATE tickets SET sprint_id = $1, updated_at = NOW()
		WHERE sprint_id = $2 AND status <> $3
	`, *targetID, closedID, models.TicketStatusClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to roll over tickets: %w", err)
	}
	result.RolledOverTickets = moved.RowsAffected()

	_, err = tx.Exec(ctx, `
		UPDATE teams SET current_sprint_id = NULL, next_sprint_id = $1, updated_at = NOW()
		WHERE id = $2
	`, *targetID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to update team sprints: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.SprintPointers = models.SprintPointers{TeamID: teamID, NextSprintID: targetID}
	return result, nil
}

// CreateNextSprint queues a new sprint as the team's next sprint. It fails
// when one is already queued.
func (s *SprintService) CreateNextSprint(ctx context.Context, teamID uuid.UUID, title, description string) (*models.Sprint, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ptrs, err := lockSprintPointers(ctx, tx, teamID)
	if err != nil {
		return nil, err
	}
	if ptrs.NextSprintID != nil {
		return nil, ErrNextSprintExists
	}

	sprint, err := insertSprint(ctx, tx, teamID, title, description)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE teams SET next_sprint_id = $1, updated_at = NOW() WHERE id = $2
	`, sprint.ID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to queue sprint: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return sprint, nil
}

// CreateSprint adds a sprint to the team without touching its pointers.
func (s *SprintService) CreateSprint(ctx context.Context, teamID uuid.UUID, title, description string) (*models.Sprint, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	var sprint models.Sprint
	err := scanSprint(s.db.Pool.QueryRow(ctx, `
		INSERT INTO sprints (team_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING `+sprintColumns,
		teamID, title, description), &sprint)
	if err != nil {
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}
	return &sprint, nil
}

// GetCurrentSprint returns the team's current sprint with its tickets.
func (s *SprintService) GetCurrentSprint(ctx context.Context, teamID uuid.UUID) (*models.Sprint, error) {
	var currentID *uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT current_sprint_id FROM teams WHERE id = $1`, teamID).Scan(&currentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	if currentID == nil {
		return nil, ErrNoCurrentSprint
	}
	return s.GetSprint(ctx, teamID, *currentID)
}

// GetSprint loads one sprint of the team together with its tickets.
func (s *SprintService) GetSprint(ctx context.Context, teamID, sprintID uuid.UUID) (*models.Sprint, error) {
	var sprint models.Sprint
	err := scanSprint(s.db.Pool.QueryRow(ctx, `
		SELECT `+sprintColumns+` FROM sprints WHERE id = $1 AND team_id = $2
	`, sprintID, teamID), &sprint)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSprintNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+ticketColumns+` FROM tickets WHERE sprint_id = $1 ORDER BY created_at
	`, sprintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sprint.Tickets = []models.Ticket{}
	for rows.Next() {
		var ticket models.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		sprint.Tickets = append(sprint.Tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sprint, nil
}

// ListSprints returns every sprint of the team, newest first, without tickets.
func (s *SprintService) ListSprints(ctx context.Context, teamID uuid.UUID) ([]models.Sprint, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+sprintColumns+` FROM sprints WHERE team_id = $1 ORDER BY created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sprints := []models.Sprint{}
	for rows.Next() {
		var sprint models.Sprint
		if err := scanSprint(rows, &sprint); err != nil {
			return nil, err
		}
		sprints = append(sprints, sprint)
	}
	return sprints, rows.Err()
}

// GetSprintPointers returns the team's current and next sprint ids.
func (s *SprintService) GetSprintPointers(ctx context.Context, teamID uuid.UUID) (*models.SprintPointers, error) {
	ptrs := models.SprintPointers{TeamID: teamID}
	err := s.db.Pool.QueryRow(ctx, `
		SELECT current_sprint_id, next_sprint_id FROM teams WHERE id = $1
	`, teamID).Scan(&ptrs.CurrentSprintID, &ptrs.NextSprintID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ptrs, nil
}
