package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIssuer = "tandem-api"

// SessionTokenService signs and verifies the value stored in the session
// cookie. The token only names a session row; revocation is checked against
// the database.
type SessionTokenService struct {
	secret []byte
	expiry time.Duration
}

type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	jwt.RegisteredClaims
}

func NewSessionTokenService(secret string, expiry time.Duration) *SessionTokenService {
	return &SessionTokenService{
		secret: []byte(secret),
		expiry: expiry,
	}
}

func (s *SessionTokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue signs a token for an existing session row.
func (s *SessionTokenService) Issue(sessionID, userID uuid.UUID, email string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
			Subject:   userID.String(),
			ID:        sessionID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *SessionTokenService) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if claims.SessionID == uuid.Nil || claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("session token is missing identifiers")
	}

	return claims, nil
}
