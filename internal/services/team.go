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

const teamColumns = `id, organization_id, name, icon, description, current_sprint_id, next_sprint_id, created_at, updated_at`

type TeamService struct {
	db *database.DB
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

// TeamInput carries the editable fields of a team.
type TeamInput struct {
	Name        string
	Icon        string
	Description string
}

func scanTeam(row pgx.Row, team *models.Team) error {
	return row.Scan(
		&team.ID, &team.OrganizationID, &team.Name, &team.Icon, &team.Description,
		&team.CurrentSprintID, &team.NextSprintID, &team.CreatedAt, &team.UpdatedAt,
	)
}

// Create adds a team to an organization owned by creatorID and makes the
// creator its admin.
func (s *TeamService) Create(ctx context.Context, orgID, creatorID uuid.UUID, input TeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, Validation("team name is required")
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT owner_id FROM organizations WHERE id = $1`, orgID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	if ownerID != creatorID {
		return nil, ErrNotOrganizationOwner
	}

	var team models.Team
	err = scanTeam(tx.QueryRow(ctx, `
		INSERT INTO teams (organization_id, name, icon, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+teamColumns,
		orgID, input.Name, input.Icon, input.Description), &team)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_to_team (user_id, team_id, role)
		VALUES ($1, $2, $3)
	`, creatorID, team.ID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator as admin: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, nil
}

func (s *TeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := scanTeam(s.db.Pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, teamID), &team)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetUserTeams lists the teams a user belongs to. roles[i] is the user's
// role in teams[i].
func (s *TeamService) GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []int, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT t.id, t.organization_id, t.name, t.icon, t.description,
		       t.current_sprint_id, t.next_sprint_id, t.created_at, t.updated_at, ut.role
		FROM teams t
		JOIN user_to_team ut ON t.id = ut.team_id
		WHERE ut.user_id = $1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var teams []models.Team
	var roles []int
	for rows.Next() {
		var team models.Team
		var role int
		if err := rows.Scan(
			&team.ID, &team.OrganizationID, &team.Name, &team.Icon, &team.Description,
			&team.CurrentSprintID, &team.NextSprintID, &team.CreatedAt, &team.UpdatedAt, &role,
		); err != nil {
			return nil, nil, err
		}
		teams = append(teams, team)
		roles = append(roles, role)
	}
	return teams, roles, rows.Err()
}

func (s *TeamService) Update(ctx context.Context, teamID uuid.UUID, input TeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, Validation("team name is required")
	}

	var team models.Team
	err := scanTeam(s.db.Pool.QueryRow(ctx, `
		UPDATE teams SET name = $1, icon = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+teamColumns,
		input.Name, input.Icon, input.Description, teamID), &team)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) Delete(ctx context.Context, teamID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

// GetRole returns the role userID holds in teamID, or ErrNotTeamMember.
func (s *TeamService) GetRole(ctx context.Context, teamID, userID uuid.UUID) (int, error) {
	var role int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role FROM user_to_team WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotTeamMember
	}
	if err != nil {
		return 0, err
	}
	return role, nil
}

func (s *TeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM user_to_team WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	return exists, err
}

func (s *TeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.UserToTeam, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT ut.user_id, ut.team_id, ut.role, ut.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.created_at, u.updated_at
		FROM user_to_team ut
		JOIN users u ON ut.user_id = u.id
		WHERE ut.team_id = $1
		ORDER BY ut.role, ut.created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.UserToTeam
	for rows.Next() {
		var member models.UserToTeam
		var user models.User
		if err := rows.Scan(
			&member.UserID, &member.TeamID, &member.Role, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

// SetRole inserts or updates a membership. It backs the admin CLI and does
// not apply invite rules.
func (s *TeamService) SetRole(ctx context.Context, teamID, userID uuid.UUID, role int) error {
	if !models.ValidRole(role) {
		return ErrInvalidRole
	}
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO user_to_team (user_id, team_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, team_id) DO UPDATE SET role = EXCLUDED.role
	`, userID, teamID, role)
	return err
}

// RemoveMember deletes a membership. A team keeps at least one admin, so the
// last admin cannot be removed and cannot leave.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent removals of the same team's admins.
	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM teams WHERE id = $1 FOR UPDATE`, teamID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTeamNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock team: %w", err)
	}

	var role int
	err = tx.QueryRow(ctx, `
		SELECT role FROM user_to_team WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}

	if role == models.RoleAdmin {
		var admins int
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM user_to_team WHERE team_id = $1 AND role = $2
		`, teamID, models.RoleAdmin).Scan(&admins)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	_, err = tx.Exec(ctx, `DELETE FROM user_to_team WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return tx.Commit(ctx)
}
