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

const organizationColumns = `id, name, description, owner_id, created_at, updated_at`

type OrganizationService struct {
	db *database.DB
}

func NewOrganizationService(db *database.DB) *OrganizationService {
	return &OrganizationService{db: db}
}

func scanOrganization(row pgx.Row, org *models.Organization) error {
	return row.Scan(&org.ID, &org.Name, &org.Description, &org.OwnerID, &org.CreatedAt, &org.UpdatedAt)
}

func (s *OrganizationService) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validation("organization name is required")
	}

	var org models.Organization
	err := scanOrganization(s.db.Pool.QueryRow(ctx, `
		INSERT INTO organizations (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING `+organizationColumns,
		name, description, ownerID), &org)
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return &org, nil
}

func (s *OrganizationService) GetByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := scanOrganization(s.db.Pool.QueryRow(ctx, `
		SELECT `+organizationColumns+` FROM organizations WHERE id = $1
	`, orgID), &org)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListForUser returns organizations the user owns or reaches through a team
// membership.
func (s *OrganizationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT DISTINCT o.id, o.name, o.description, o.owner_id, o.created_at, o.updated_at
		FROM organizations o
		LEFT JOIN teams t ON t.organization_id = o.id
		LEFT JOIN user_to_team ut ON ut.team_id = t.id AND ut.user_id = $1
		WHERE o.owner_id = $1 OR ut.user_id IS NOT NULL
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := scanOrganization(rows, &org); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// CanView reports whether the user owns the organization or belongs to one
// of its teams.
func (s *OrganizationService) CanView(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM organizations WHERE id = $1 AND owner_id = $2)
		    OR EXISTS(
		        SELECT 1 FROM teams t
		        JOIN user_to_team ut ON ut.team_id = t.id
		        WHERE t.organization_id = $1 AND ut.user_id = $2
		    )
	`, orgID, userID).Scan(&ok)
	return ok, err
}

func (s *OrganizationService) Update(ctx context.Context, orgID, actorID uuid.UUID, name, description string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validation("organization name is required")
	}
	if err := s.requireOwner(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	var org models.Organization
	err := scanOrganization(s.db.Pool.QueryRow(ctx, `
		UPDATE organizations SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+organizationColumns,
		name, description, orgID), &org)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *OrganizationService) Delete(ctx context.Context, orgID, actorID uuid.UUID) error {
	if err := s.requireOwner(ctx, orgID, actorID); err != nil {
		return err
	}
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	return err
}

func (s *OrganizationService) IsOwner(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	var ownerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT owner_id FROM organizations WHERE id = $1`, orgID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrOrganizationNotFound
	}
	if err != nil {
		return false, err
	}
	return ownerID == userID, nil
}

func (s *OrganizationService) requireOwner(ctx context.Context, orgID, userID uuid.UUID) error {
	owner, err := s.IsOwner(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !owner {
		return ErrNotOrganizationOwner
	}
	return nil
}
