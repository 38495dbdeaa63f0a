package models

import (
	"time"

	"github.com/google/uuid"
)

// Title and description given to the sprint created when a sprint closes
// with no next sprint queued.
const (
	PlaceholderSprintTitle       = "Next Sprint"
	PlaceholderSprintDescription = "Placeholder description"
)

type Sprint struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"team_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tickets     []Ticket  `json:"tickets,omitempty"`
}

// SprintPointers is the sprint state held on a team row.
type SprintPointers struct {
	TeamID          uuid.UUID  `json:"team_id"`
	CurrentSprintID *uuid.UUID `json:"current_sprint_id"`
	NextSprintID    *uuid.UUID `json:"next_sprint_id"`
}

// SprintCloseResult describes what closing the current sprint did.
type SprintCloseResult struct {
	SprintPointers
	ClosedSprintID     uuid.UUID `json:"closed_sprint_id"`
	RolledOverTickets  int64     `json:"rolled_over_tickets"`
	PlaceholderCreated bool      `json:"placeholder_created"`
}
