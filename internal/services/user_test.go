package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/oauth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "name", "avatar_url", "provider", "provider_id", "created_at", "updated_at"}

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db), mock
}

func TestUserService_FindOrCreateFromOAuth(t *testing.T) {
	avatar := "https://example.com/avatar.png"
	info := &oauth.UserInfo{
		Email:     "ada@example.com",
		Name:      "Ada",
		AvatarURL: avatar,
		ID:        "provider-123",
		Provider:  "github",
	}
	lookup := `SELECT .+ FROM users WHERE provider = .+ AND provider_id`

	tests := []struct {
		name   string
		expect func(mock pgxmock.PgxPoolIface, id uuid.UUID, now time.Time)
	}{
		{
			name: "first login creates the user",
			expect: func(mock pgxmock.PgxPoolIface, id uuid.UUID, now time.Time) {
				mock.ExpectQuery(lookup).
					WithArgs(info.Provider, info.ID).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(info.Email, info.Name, &info.AvatarURL, info.Provider, info.ID).
					WillReturnRows(pgxmock.NewRows(userRowColumns).
						AddRow(id, info.Email, info.Name, &avatar, info.Provider, info.ID, now, now))
			},
		},
		{
			name: "unchanged profile is returned as is",
			expect: func(mock pgxmock.PgxPoolIface, id uuid.UUID, now time.Time) {
				mock.ExpectQuery(lookup).
					WithArgs(info.Provider, info.ID).
					WillReturnRows(pgxmock.NewRows(userRowColumns).
						AddRow(id, info.Email, info.Name, &avatar, info.Provider, info.ID, now, now))
			},
		},
		{
			name: "changed profile is copied over",
			expect: func(mock pgxmock.PgxPoolIface, id uuid.UUID, now time.Time) {
				mock.ExpectQuery(lookup).
					WithArgs(info.Provider, info.ID).
					WillReturnRows(pgxmock.NewRows(userRowColumns).
						AddRow(id, "old@example.com", "Old Name", (*string)(nil), info.Provider, info.ID, now, now))
				mock.ExpectExec(`UPDATE users SET email = .+, name = .+, avatar_url`).
					WithArgs(info.Email, info.Name, &info.AvatarURL, id).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := setupUserService(t)
			id := uuid.New()
			tt.expect(mock, id, time.Now())

			user, err := svc.FindOrCreateFromOAuth(context.Background(), info)

			require.NoError(t, err)
			assert.Equal(t, id, user.ID)
			assert.Equal(t, info.Email, user.Email)
			assert.Equal(t, info.Name, user.Name)
			require.NotNil(t, user.AvatarURL)
			assert.Equal(t, avatar, *user.AvatarURL)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserService_FindOrCreateFromOAuth_LookupError(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	info := &oauth.UserInfo{Email: "a@example.com", Name: "A", ID: "1", Provider: "github"}

	mock.ExpectQuery(`SELECT .+ FROM users WHERE provider`).
		WithArgs(info.Provider, info.ID).
		WillReturnError(assert.AnError)

	_, err := svc.FindOrCreateFromOAuth(ctx, info)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(userRowColumns).
		AddRow(userID, "test@example.com", "Test User", (*string)(nil), "github", "123", now, now)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnRows(rows)

	user, err := svc.GetByID(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, userID)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByEmail(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(userRowColumns).
		AddRow(userID, "Ada@Example.com", "Ada", (*string)(nil), "github", "1", now, now)
	mock.ExpectQuery(`FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("ada@example.com").
		WillReturnRows(rows)

	user, err := svc.GetByEmail(ctx, "ada@example.com")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Update(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(userRowColumns).
		AddRow(userID, "test@example.com", "New Name", (*string)(nil), "github", "123", now, now)
	mock.ExpectQuery(`UPDATE users SET name`).
		WithArgs("New Name", userID).
		WillReturnRows(rows)

	user, err := svc.Update(ctx, userID, "  New Name ")

	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Update_EmptyName(t *testing.T) {
	svc, mock := setupUserService(t)

	_, err := svc.Update(context.Background(), uuid.New(), "   ")

	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
