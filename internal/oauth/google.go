package oauth

import (
	"context"

	"github.com/dimitrije/tandem-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(cfg config.OAuthConfig) *GoogleProvider {
	return &GoogleProvider{
		config: newConfig(cfg, google.Endpoint,
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		),
		userInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) GetConsentURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode rejects accounts whose email Google has not verified.
func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	client, err := exchange(ctx, p.config, code)
	if err != nil {
		return nil, err
	}

	var profile struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := getJSON(ctx, client, p.Name(), p.userInfoURL, &profile); err != nil {
		return nil, err
	}
	if !profile.VerifiedEmail {
		return nil, ErrNoEmail
	}

	return newUserInfo(p.Name(), profile.ID, profile.Email, profile.Name, profile.Email, profile.Picture)
}
