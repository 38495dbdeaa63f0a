package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenService_IssueAndParse(t *testing.T) {
	svc := NewSessionTokenService("test-secret", time.Hour)
	sessionID := uuid.New()
	userID := uuid.New()

	token, err := svc.Issue(sessionID, userID, "ada@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "tandem-api", claims.Issuer)
}

func TestSessionTokenService_Parse_Expired(t *testing.T) {
	svc := NewSessionTokenService("test-secret", time.Hour)

	token, err := svc.Issue(uuid.New(), uuid.New(), "ada@example.com", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.Error(t, err)
}

func TestSessionTokenService_Parse_WrongSecret(t *testing.T) {
	issuer := NewSessionTokenService("secret-a", time.Hour)
	verifier := NewSessionTokenService("secret-b", time.Hour)

	token, err := issuer.Issue(uuid.New(), uuid.New(), "ada@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestSessionTokenService_Parse_WrongAlgorithm(t *testing.T) {
	svc := NewSessionTokenService("test-secret", time.Hour)

	claims := SessionClaims{
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tandem-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Parse(signed)
	assert.Error(t, err)
}

func TestSessionTokenService_Parse_Garbage(t *testing.T) {
	svc := NewSessionTokenService("test-secret", time.Hour)

	_, err := svc.Parse("not-a-token")
	assert.Error(t, err)
}
