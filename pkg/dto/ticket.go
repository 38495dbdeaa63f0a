package dto

import "github.com/google/uuid"

type CreateTicketRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	SprintID    *uuid.UUID `json:"sprint_id"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

// UpdateTicketRequest edits the given fields only. Unassign clears the
// assignee.
type UpdateTicketRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	Unassign    bool       `json:"unassign"`
}

type DeletedResponse struct {
	ID uuid.UUID `json:"id"`
}
