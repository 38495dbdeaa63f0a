package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TicketStatusOpen       = "OPEN"
	TicketStatusInProgress = "IN PROGRESS"
	TicketStatusBlocked    = "BLOCKED"
	TicketStatusClosed     = "CLOSED"
)

const (
	TicketPriorityNone   = "NONE"
	TicketPriorityLow    = "LOW"
	TicketPriorityMedium = "MEDIUM"
	TicketPriorityHigh   = "HIGH"
)

var TicketStatuses = []string{TicketStatusOpen, TicketStatusInProgress, TicketStatusBlocked, TicketStatusClosed}

type Ticket struct {
	ID          uuid.UUID  `json:"id"`
	TeamID      uuid.UUID  `json:"team_id"`
	SprintID    *uuid.UUID `json:"sprint_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	ReporterID  uuid.UUID  `json:"reporter_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Ticket) InBacklog() bool {
	return t.SprintID == nil
}

func ValidTicketStatus(status string) bool {
	for _, s := range TicketStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func ValidTicketPriority(priority string) bool {
	switch priority {
	case TicketPriorityNone, TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}
