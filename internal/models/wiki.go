package models

import (
	"time"

	"github.com/google/uuid"
)

type WikiPage struct {
	ID        uuid.UUID  `json:"id"`
	TeamID    uuid.UUID  `json:"team_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Version   int        `json:"version"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
