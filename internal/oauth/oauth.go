package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dimitrije/tandem-api/internal/config"
	"golang.org/x/oauth2"
)

var ErrNoEmail = errors.New("no email found")

type UserInfo struct {
	Email     string
	Name      string
	AvatarURL string
	ID        string
	Provider  string
}

type Provider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
	Name() string
}

func newConfig(cfg config.OAuthConfig, endpoint oauth2.Endpoint, scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}
}

// exchange trades the callback code for an HTTP client that carries the
// provider access token.
func exchange(ctx context.Context, cfg *oauth2.Config, code string) (*http.Client, error) {
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return cfg.Client(ctx, token), nil
}

// newUserInfo builds the profile handed to the user service. Emails are
// lowercased because invites are matched against them; handle stands in for
// an empty display name.
func newUserInfo(provider, id, email, name, handle, avatarURL string) (*UserInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrNoEmail
	}
	if name == "" {
		name = handle
	}
	return &UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
		ID:        id,
		Provider:  provider,
	}, nil
}

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// getJSON fetches url with the token-carrying client and decodes the body
// into v.
func getJSON(ctx context.Context, client *http.Client, provider, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s api returned status %d", provider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}
	return nil
}
