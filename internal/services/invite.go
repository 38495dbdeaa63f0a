package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const inviteColumns = `id, team_id, email, role, invited_by, email_sent_at, created_at`

// Mailer delivers invitation emails. *EmailService implements it.
type Mailer interface {
	IsConfigured() bool
	SendTeamInvite(to string, invite InviteEmail) error
}

type InviteService struct {
	db        *database.DB
	mailer    Mailer
	inviteURL string
}

// NewInviteService builds the service. inviteURL is the frontend page linked
// from invitation emails.
func NewInviteService(db *database.DB, mailer Mailer, inviteURL string) *InviteService {
	return &InviteService{db: db, mailer: mailer, inviteURL: inviteURL}
}

type teamRole struct {
	UserID uuid.UUID
	Role   int
	Email  string
	Name   string
}

func scanInvite(row pgx.Row, invite *models.TeamInvite) error {
	return row.Scan(
		&invite.ID, &invite.TeamID, &invite.Email, &invite.Role,
		&invite.InvitedBy, &invite.EmailSentAt, &invite.CreatedAt,
	)
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// Send invites email to teamID at role. The inviter must belong to the team,
// the email must not belong to a member, and the inviter may only grant a
// role strictly less privileged than their own.
//
// The invite is stored before the email goes out. When delivery fails the
// stored invite is returned together with an *InviteDeliveryError so the
// caller can offer a resend.
func (s *InviteService) Send(ctx context.Context, teamID, inviterID uuid.UUID, email string, role int) (*models.TeamInvite, error) {
	var teamName string
	err := s.db.Pool.QueryRow(ctx, `SELECT name FROM teams WHERE id = $1`, teamID).Scan(&teamName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	roles, err := s.teamRoles(ctx, teamID)
	if err != nil {
		return nil, err
	}

	var inviter *teamRole
	for i := range roles {
		if roles[i].UserID == inviterID {
			inviter = &roles[i]
			break
		}
	}
	if inviter == nil {
		return nil, ErrNotTeamMember
	}

	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	for _, r := range roles {
		if strings.EqualFold(r.Email, email) {
			return nil, ErrAlreadyMember
		}
	}
	if !CanInvite(inviter.Role, role) {
		return nil, ErrInviteNotPermitted
	}

	var invite models.TeamInvite
	err = scanInvite(s.db.Pool.QueryRow(ctx, `
		INSERT INTO team_invites (team_id, email, role, invited_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING `+inviteColumns,
		teamID, email, role, inviterID), &invite)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	if err := s.deliver(ctx, &invite, teamName, inviter.Name); err != nil {
		return &invite, err
	}
	return &invite, nil
}

// Resend retries delivery of a stored invite. The actor needs the same
// authority that issuing the invite would require.
func (s *InviteService) Resend(ctx context.Context, inviteID, actorID uuid.UUID) (*models.TeamInvite, error) {
	invite, err := s.get(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	var actorRole int
	var actorName, teamName string
	err = s.db.Pool.QueryRow(ctx, `
		SELECT ut.role, u.name, t.name
		FROM user_to_team ut
		JOIN users u ON u.id = ut.user_id
		JOIN teams t ON t.id = ut.team_id
		WHERE ut.team_id = $1 AND ut.user_id = $2
	`, invite.TeamID, actorID).Scan(&actorRole, &actorName, &teamName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotTeamMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inviter: %w", err)
	}
	if !CanInvite(actorRole, invite.Role) {
		return nil, ErrInviteNotPermitted
	}

	if err := s.deliver(ctx, invite, teamName, actorName); err != nil {
		return invite, err
	}
	return invite, nil
}

// Accept turns the invite into a membership for the session user. The user's
// email must match the invite. Membership creation and invite removal commit
// together.
func (s *InviteService) Accept(ctx context.Context, inviteID, userID uuid.UUID, userEmail string) (*models.UserToTeam, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var invite models.TeamInvite
	err = scanInvite(tx.QueryRow(ctx, `
		SELECT `+inviteColumns+` FROM team_invites WHERE id = $1 FOR UPDATE
	`, inviteID), &invite)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}
	if !strings.EqualFold(invite.Email, strings.TrimSpace(userEmail)) {
		return nil, ErrInviteEmailMismatch
	}

	membership := models.UserToTeam{}
	err = tx.QueryRow(ctx, `
		INSERT INTO user_to_team (user_id, team_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, team_id) DO NOTHING
		RETURNING user_id, team_id, role, created_at
	`, userID, invite.TeamID, invite.Role).Scan(
		&membership.UserID, &membership.TeamID, &membership.Role, &membership.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM team_invites WHERE id = $1`, inviteID); err != nil {
		return nil, fmt.Errorf("failed to delete invite: %w", err)
	}

	var team models.Team
	if err := scanTeam(tx.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, invite.TeamID), &team); err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	membership.Team = &team

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &membership, nil
}

// Decline deletes an invite addressed to userEmail.
func (s *InviteService) Decline(ctx context.Context, inviteID uuid.UUID, userEmail string) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM team_invites WHERE id = $1 AND lower(email) = lower($2)
	`, inviteID, strings.TrimSpace(userEmail))
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// Cancel withdraws a pending invite of teamID. Admins may cancel any invite;
// other members only invites they would be allowed to issue.
func (s *InviteService) Cancel(ctx context.Context, teamID, inviteID, actorID uuid.UUID) error {
	invite, err := s.get(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.TeamID != teamID {
		return ErrInviteNotFound
	}

	var actorRole int
	err = s.db.Pool.QueryRow(ctx, `
		SELECT role FROM user_to_team WHERE team_id = $1 AND user_id = $2
	`, teamID, actorID).Scan(&actorRole)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotTeamMember
	}
	if err != nil {
		return err
	}
	if actorRole != models.RoleAdmin && !CanInvite(actorRole, invite.Role) {
		return ErrInviteNotPermitted
	}

	_, err = s.db.Pool.Exec(ctx, `DELETE FROM team_invites WHERE id = $1`, inviteID)
	return err
}

// ListForEmail returns the pending invites addressed to email, with teams.
func (s *InviteService) ListForEmail(ctx context.Context, email string) ([]models.TeamInvite, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.id, i.team_id, i.email, i.role, i.invited_by, i.email_sent_at, i.created_at,
		       t.id, t.organization_id, t.name, t.icon, t.description,
		       t.current_sprint_id, t.next_sprint_id, t.created_at, t.updated_at
		FROM team_invites i
		JOIN teams t ON t.id = i.team_id
		WHERE lower(i.email) = lower($1)
		ORDER BY i.created_at DESC
	`, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := []models.TeamInvite{}
	for rows.Next() {
		var invite models.TeamInvite
		var team models.Team
		if err := rows.Scan(
			&invite.ID, &invite.TeamID, &invite.Email, &invite.Role,
			&invite.InvitedBy, &invite.EmailSentAt, &invite.CreatedAt,
			&team.ID, &team.OrganizationID, &team.Name, &team.Icon, &team.Description,
			&team.CurrentSprintID, &team.NextSprintID, &team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invite.Team = &team
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

func (s *InviteService) ListForTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamInvite, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+inviteColumns+` FROM team_invites WHERE team_id = $1 ORDER BY created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := []models.TeamInvite{}
	for rows.Next() {
		var invite models.TeamInvite
		if err := scanInvite(rows, &invite); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

func (s *InviteService) get(ctx context.Context, inviteID uuid.UUID) (*models.TeamInvite, error) {
	var invite models.TeamInvite
	err := scanInvite(s.db.Pool.QueryRow(ctx, `
		SELECT `+inviteColumns+` FROM team_invites WHERE id = $1
	`, inviteID), &invite)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (s *InviteService) teamRoles(ctx context.Context, teamID uuid.UUID) ([]teamRole, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT ut.user_id, ut.role, u.email, u.name
		FROM user_to_team ut
		JOIN users u ON u.id = ut.user_id
		WHERE ut.team_id = $1
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team roles: %w", err)
	}
	defer rows.Close()

	var roles []teamRole
	for rows.Next() {
		var r teamRole
		if err := rows.Scan(&r.UserID, &r.Role, &r.Email, &r.Name); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// deliver sends the invitation email and records when it went out. Without
// SMTP configured nothing is sent and email_sent_at stays empty.
func (s *InviteService) deliver(ctx context.Context, invite *models.TeamInvite, teamName, inviterName string) error {
	if s.mailer == nil || !s.mailer.IsConfigured() {
		return nil
	}

	err := s.mailer.SendTeamInvite(invite.Email, InviteEmail{
		TeamName:    teamName,
		InviterName: inviterName,
		RoleName:    models.RoleName(invite.Role),
		InviteURL:   s.inviteURL,
	})
	if err != nil {
		return &InviteDeliveryError{Err: err}
	}

	err = s.db.Pool.QueryRow(ctx, `
		UPDATE team_invites SET email_sent_at = NOW() WHERE id = $1 RETURNING email_sent_at
	`, invite.ID).Scan(&invite.EmailSentAt)
	if err != nil {
		return fmt.Errorf("failed to record invite delivery: %w", err)
	}
	return nil
}
