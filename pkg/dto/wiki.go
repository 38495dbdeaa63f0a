package dto

import "github.com/dimitrije/tandem-api/internal/models"

type CreateWikiPageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateWikiPageRequest must carry the version the client last read.
type UpdateWikiPageRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Version int     `json:"version"`
}

type WikiPageResponse struct {
	models.WikiPage
	HTML string `json:"html"`
}
