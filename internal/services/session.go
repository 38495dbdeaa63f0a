package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SessionService struct {
	db *database.DB
}

func NewSessionService(db *database.DB) *SessionService {
	return &SessionService{db: db}
}

func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, userAgent string, expiresAt time.Time) (*models.Session, error) {
	var session models.Session
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, user_agent, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, user_agent, expires_at, revoked_at, created_at
	`, userID, nullableString(userAgent), expiresAt).Scan(
		&session.ID, &session.UserID, &session.UserAgent,
		&session.ExpiresAt, &session.RevokedAt, &session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// Validate returns nil when the session exists, belongs to userID, is not
// revoked and has not expired.
func (s *SessionService) Validate(ctx context.Context, sessionID, userID uuid.UUID) error {
	var owner uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT user_id FROM sessions
		WHERE id = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`, sessionID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if owner != userID {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SessionService) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL
	`, sessionID)
	return err
}

func (s *SessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL
	`, userID)
	return err
}

// CleanupExpired deletes expired and revoked sessions and returns how many
// rows were removed.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM sessions WHERE expires_at < NOW() OR revoked_at IS NOT NULL
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
