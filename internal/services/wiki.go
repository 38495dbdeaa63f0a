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

const wikiColumns = `id, team_id, title, content, version, created_by, updated_by, created_at, updated_at`

type WikiService struct {
	db *database.DB
}

func NewWikiService(db *database.DB) *WikiService {
	return &WikiService{db: db}
}

func scanWikiPage(row pgx.Row, page *models.WikiPage) error {
	return row.Scan(
		&page.ID, &page.TeamID, &page.Title, &page.Content, &page.Version,
		&page.CreatedBy, &page.UpdatedBy, &page.CreatedAt, &page.UpdatedAt,
	)
}

func (s *WikiService) Create(ctx context.Context, teamID, userID uuid.UUID, title, content string) (*models.WikiPage, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	var page models.WikiPage
	err := scanWikiPage(s.db.Pool.QueryRow(ctx, `
		INSERT INTO wiki_pages (team_id, title, content, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+wikiColumns,
		teamID, title, content, userID), &page)
	if err != nil {
		return nil, fmt.Errorf("failed to create wiki page: %w", err)
	}
	return &page, nil
}

func (s *WikiService) Get(ctx context.Context, teamID, pageID uuid.UUID) (*models.WikiPage, error) {
	var page models.WikiPage
	err := scanWikiPage(s.db.Pool.QueryRow(ctx, `
		SELECT `+wikiColumns+` FROM wiki_pages WHERE id = $1 AND team_id = $2
	`, pageID, teamID), &page)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWikiPageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *WikiService) List(ctx context.Context, teamID uuid.UUID) ([]models.WikiPage, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+wikiColumns+` FROM wiki_pages WHERE team_id = $1 ORDER BY title
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []models.WikiPage{}
	for rows.Next() {
		var page models.WikiPage
		if err := scanWikiPage(rows, &page); err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// Update applies the non-nil fields when the stored version still equals
// expectedVersion, and bumps the version.
func (s *WikiService) Update(ctx context.Context, teamID, pageID uuid.UUID, title, content *string, expectedVersion int, userID uuid.UUID) (*models.WikiPage, error) {
	if title == nil && content == nil {
		return nil, ErrNoFieldsToUpdate
	}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, ErrTitleRequired
		}
		title = &trimmed
	}

	var page models.WikiPage
	err := scanWikiPage(s.db.Pool.QueryRow(ctx, `
		UPDATE wiki_pages
		SET title = COALESCE($1, title), content = COALESCE($2, content),
		    version = version + 1, updated_by = $3, updated_at = NOW()
		WHERE id = $4 AND team_id = $5 AND version = $6
		RETURNING `+wikiColumns,
		title, content, userID, pageID, teamID, expectedVersion), &page)
	if err != nil {
		return nil, s.checkVersionConflict(ctx, teamID, pageID, expectedVersion, err)
	}
	return &page, nil
}

func (s *WikiService) checkVersionConflict(ctx context.Context, teamID, pageID uuid.UUID, expectedVersion int, originalErr error) error {
	if !errors.Is(originalErr, pgx.ErrNoRows) {
		return fmt.Errorf("failed to update wiki page: %w", originalErr)
	}
	var currentVersion int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT version FROM wiki_pages WHERE id = $1 AND team_id = $2
	`, pageID, teamID).Scan(&currentVersion)
	if err != nil {
		return ErrWikiPageNotFound
	}
	if currentVersion != expectedVersion {
		return ErrWikiVersionConflict
	}
	return originalErr
}

func (s *WikiService) Delete(ctx context.Context, teamID, pageID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM wiki_pages WHERE id = $1 AND team_id = $2`, pageID, teamID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrWikiPageNotFound
	}
	return nil
}
