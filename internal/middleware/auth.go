package middleware

import (
	"context"
	"strings"

	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	SessionKey   = "session"
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// Session is the authenticated login a request runs under.
type Session struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Email  string
}

type SessionValidator interface {
	Validate(ctx context.Context, sessionID, userID uuid.UUID) error
}

// Auth accepts the session cookie or a Bearer token carrying the same value.
// The token must verify and its session row must still be live.
func Auth(tokens *services.SessionTokenService, sessions SessionValidator, cookieName string) drift.HandlerFunc {
	return func(c *drift.Context) {
		token, ok := sessionToken(c, cookieName)
		if !ok {
			c.Unauthorized("missing session")
			return
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			c.Unauthorized("invalid or expired session")
			return
		}

		if err := sessions.Validate(c.Request.Context(), claims.SessionID, claims.UserID); err != nil {
			c.Unauthorized("session revoked or expired")
			return
		}

		session := &Session{ID: claims.SessionID, UserID: claims.UserID, Email: claims.Email}
		c.Set(SessionKey, session)
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		if info := requestInfoFrom(c.Request.Context()); info != nil {
			info.userID = claims.UserID
		}

		c.Next()
	}
}

func sessionToken(c *drift.Context, cookieName string) (string, bool) {
	if cookie, err := c.Request.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func GetSession(c *drift.Context) *Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return nil
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
