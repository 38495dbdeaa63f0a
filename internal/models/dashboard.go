package models

import "github.com/google/uuid"

type SprintProgress struct {
	SprintID uuid.UUID `json:"sprint_id"`
	Title    string    `json:"title"`
	Total    int       `json:"total"`
	Closed   int       `json:"closed"`
}

type Dashboard struct {
	TeamID         uuid.UUID       `json:"team_id"`
	StatusCounts   map[string]int  `json:"status_counts"`
	BacklogSize    int             `json:"backlog_size"`
	CurrentSprint  *SprintProgress `json:"current_sprint,omitempty"`
	AssignedToUser []Ticket        `json:"assigned_to_me"`
}
