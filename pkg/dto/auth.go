package dto

import "time"

type ConsentURLResponse struct {
	URL string `json:"url"`
}

// SessionResponse is returned by the OAuth callback for clients that do not
// keep cookies. Token is the same value the session cookie carries.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
