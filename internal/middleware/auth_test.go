package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "tandem_session"

type fakeSessions struct {
	err      error
	validate []uuid.UUID
}

func (f *fakeSessions) Validate(_ context.Context, sessionID, _ uuid.UUID) error {
	f.validate = append(f.validate, sessionID)
	return f.err
}

func newTestTokens() *services.SessionTokenService {
	return services.NewSessionTokenService("test-secret-key", time.Hour)
}

func issue(t *testing.T, tokens *services.SessionTokenService, sessionID, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()
	token, err := tokens.Issue(sessionID, userID, "test@example.com", expiresAt)
	require.NoError(t, err)
	return token
}

func newProtectedApp(tokens *services.SessionTokenService, sessions SessionValidator, handler drift.HandlerFunc) http.Handler {
	app := drift.New()
	app.Use(Auth(tokens, sessions, testCookie))
	if handler == nil {
		handler = func(c *drift.Context) {
			_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}
	}
	app.Get("/protected", handler)
	return app
}

func TestAuth_MissingSession(t *testing.T) {
	app := newProtectedApp(newTestTokens(), &fakeSessions{}, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing session")
}

func TestAuth_InvalidAuthorizationFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token some-token"},
		{"bearer only", "Bearer"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(newTestTokens(), &fakeSessions{}, nil)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "missing session")
		})
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	app := newProtectedApp(newTestTokens(), &fakeSessions{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired session")
}

func TestAuth_ExpiredToken(t *testing.T) {
	tokens := newTestTokens()
	sessions := &fakeSessions{}
	app := newProtectedApp(tokens, sessions, nil)
	token := issue(t, tokens, uuid.New(), uuid.New(), time.Now().Add(-time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sessions.validate)
}

func TestAuth_WrongSecret(t *testing.T) {
	other := services.NewSessionTokenService("other-secret", time.Hour)
	app := newProtectedApp(newTestTokens(), &fakeSessions{}, nil)
	token := issue(t, other, uuid.New(), uuid.New(), time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RevokedSession(t *testing.T) {
	tokens := newTestTokens()
	sessions := &fakeSessions{err: services.ErrSessionNotFound}
	app := newProtectedApp(tokens, sessions, nil)
	sessionID := uuid.New()
	token := issue(t, tokens, sessionID, uuid.New(), time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session revoked or expired")
	assert.Equal(t, []uuid.UUID{sessionID}, sessions.validate)
}

func TestAuth_ValidCookie(t *testing.T) {
	tokens := newTestTokens()
	sessionID := uuid.New()
	userID := uuid.New()
	token := issue(t, tokens, sessionID, userID, time.Now().Add(time.Hour))

	var session *Session
	var extractedUserID uuid.UUID
	var extractedEmail string
	app := newProtectedApp(tokens, &fakeSessions{}, func(c *drift.Context) {
		session = GetSession(c)
		extractedUserID = GetUserID(c)
		extractedEmail = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, session)
	assert.Equal(t, sessionID, session.ID)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, userID, extractedUserID)
	assert.Equal(t, "test@example.com", extractedEmail)
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	tokens := newTestTokens()
	app := newProtectedApp(tokens, &fakeSessions{}, nil)
	token := issue(t, tokens, uuid.New(), uuid.New(), time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetters_NotSet(t *testing.T) {
	var session *Session
	var userID uuid.UUID
	var email string

	app := drift.New()
	app.Get("/test", func(c *drift.Context) {
		session = GetSession(c)
		userID = GetUserID(c)
		email = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, nil)
	})

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Nil(t, session)
	assert.Equal(t, uuid.Nil, userID)
	assert.Empty(t, email)
}
