package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, team_id, sprint_id, title, description, status, priority, assignee_id, reporter_id, created_at, updated_at`

type TicketService struct {
	db *database.DB
}

func NewTicketService(db *database.DB) *TicketService {
	return &TicketService{db: db}
}

// TicketInput describes a new ticket. Empty status and priority default to
// OPEN and NONE; a nil SprintID puts the ticket in the backlog.
type TicketInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	SprintID    *uuid.UUID
	AssigneeID  *uuid.UUID
}

// TicketUpdate holds the fields to change. Nil fields are left alone.
type TicketUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeID  *uuid.UUID
	Unassign    bool
}

// TicketFilter narrows List. Backlog selects tickets without a sprint and
// takes precedence over SprintID.
type TicketFilter struct {
	SprintID   *uuid.UUID
	Backlog    bool
	Status     string
	AssigneeID *uuid.UUID
}

func scanTicket(row pgx.Row, ticket *models.Ticket) error {
	return row.Scan(
		&ticket.ID, &ticket.TeamID, &ticket.SprintID, &ticket.Title, &ticket.Description,
		&ticket.Status, &ticket.Priority, &ticket.AssigneeID, &ticket.ReporterID,
		&ticket.CreatedAt, &ticket.UpdatedAt,
	)
}

func (s *TicketService) Create(ctx context.Context, teamID, reporterID uuid.UUID, input TicketInput) (*models.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TicketStatusOpen
	}
	if input.Priority == "" {
		input.Priority = models.TicketPriorityNone
	}
	if !models.ValidTicketStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	if !models.ValidTicketPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}
	if input.SprintID != nil {
		if err := s.checkSprint(ctx, teamID, *input.SprintID); err != nil {
			return nil, err
		}
	}
	if input.AssigneeID != nil {
		if err := s.checkAssignee(ctx, teamID, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	var ticket models.Ticket
	err := scanTicket(s.db.Pool.QueryRow(ctx, `
		INSERT INTO tickets (team_id, sprint_id, title, description, status, priority, assignee_id, reporter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+ticketColumns,
		teamID, input.SprintID, input.Title, input.Description, input.Status, input.Priority, input.AssigneeID, reporterID,
	), &ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return &ticket, nil
}

func (s *TicketService) Get(ctx context.Context, teamID, ticketID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := scanTicket(s.db.Pool.QueryRow(ctx, `
		SELECT `+ticketColumns+` FROM tickets WHERE id = $1 AND team_id = $2
	`, ticketID, teamID), &ticket)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *TicketService) List(ctx context.Context, teamID uuid.UUID, filter TicketFilter) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE team_id = $1`
	args := []any{teamID}

	switch {
	case filter.Backlog:
		query += ` AND sprint_id IS NULL`
	case filter.SprintID != nil:
		args = append(args, *filter.SprintID)
		query += ` AND sprint_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		if !models.ValidTicketStatus(filter.Status) {
			return nil, ErrInvalidStatus
		}
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		query += ` AND assignee_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		var ticket models.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// Update edits ticket fields. Sprint membership changes go through Move.
func (s *TicketService) Update(ctx context.Context, teamID, ticketID uuid.UUID, update TicketUpdate) (*models.Ticket, error) {
	if update.Title == nil && update.Description == nil && update.Status == nil &&
		update.Priority == nil && update.AssigneeID == nil && !update.Unassign {
		return nil, ErrNoFieldsToUpdate
	}

	ticket, err := s.Get(ctx, teamID, ticketID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		ticket.Title = title
	}
	if update.Description != nil {
		ticket.Description = *update.Description
	}
	if update.Status != nil {
		if !models.ValidTicketStatus(*update.Status) {
			return nil, ErrInvalidStatus
		}
		ticket.Status = *update.Status
	}
	if update.Priority != nil {
		if !models.ValidTicketPriority(*update.Priority) {
			return nil, ErrInvalidPriority
		}
		ticket.Priority = *update.Priority
	}
	switch {
	case update.Unassign:
		ticket.AssigneeID = nil
	case update.AssigneeID != nil:
		if err := s.checkAssignee(ctx, teamID, *update.AssigneeID); err != nil {
			return nil, err
		}
		ticket.AssigneeID = update.AssigneeID
	}

	var updated models.Ticket
	err = scanTicket(s.db.Pool.QueryRow(ctx, `
		UPDATE tickets
		SET title = $1, description = $2, status = $3, priority = $4, assignee_id = $5, updated_at = NOW()
		WHERE id = $6 AND team_id = $7
		RETURNING `+ticketColumns,
		ticket.Title, ticket.Description, ticket.Status, ticket.Priority, ticket.AssigneeID, ticketID, teamID,
	), &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	return &updated, nil
}

// Move reassigns a ticket to sprintID, or to the backlog when sprintID is
// nil. The target sprint must belong to the ticket's team and be open.
func (s *TicketService) Move(ctx context.Context, teamID, ticketID uuid.UUID, sprintID *uuid.UUID) (*models.Ticket, error) {
	if sprintID != nil {
		if err := s.checkSprint(ctx, teamID, *sprintID); err != nil {
			return nil, err
		}
	}

	var ticket models.Ticket
	err := scanTicket(s.db.Pool.QueryRow(ctx, `
		UPDATE tickets SET sprint_id = $1, updated_at = NOW()
		WHERE id = $2 AND team_id = $3
		RETURNING `+ticketColumns,
		sprintID, ticketID, teamID,
	), &ticket)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to move ticket: %w", err)
	}
	return &ticket, nil
}

func (s *TicketService) SetStatus(ctx context.Context, teamID, ticketID uuid.UUID, status string) (*models.Ticket, error) {
	if !models.ValidTicketStatus(status) {
		return nil, ErrInvalidStatus
	}

	var ticket models.Ticket
	err := scanTicket(s.db.Pool.QueryRow(ctx, `
		UPDATE tickets SET status = $1, updated_at = NOW()
		WHERE id = $2 AND team_id = $3
		RETURNING `+ticketColumns,
		status, ticketID, teamID,
	), &ticket)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}
	return &ticket, nil
}

func (s *TicketService) Delete(ctx context.Context, teamID, ticketID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1 AND team_id = $2`, ticketID, teamID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *TicketService) checkSprint(ctx context.Context, teamID, sprintID uuid.UUID) error {
	var sprintTeam uuid.UUID
	var completed bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT team_id, completed FROM sprints WHERE id = $1
	`, sprintID).Scan(&sprintTeam, &completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSprintNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load sprint: %w", err)
	}
	if sprintTeam != teamID {
		return ErrSprintOtherTeam
	}
	if completed {
		return ErrSprintCompleted
	}
	return nil
}

func (s *TicketService) checkAssignee(ctx context.Context, teamID, userID uuid.UUID) error {
	var member bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM user_to_team WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&member)
	if err != nil {
		return fmt.Errorf("failed to check assignee: %w", err)
	}
	if !member {
		return ErrAssigneeNotMember
	}
	return nil
}
