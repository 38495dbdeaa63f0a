package dto

type CreateSprintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
