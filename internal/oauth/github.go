package oauth

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dimitrije/tandem-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIURL = "https://api.github.com"

type GitHubProvider struct {
	config *oauth2.Config
	apiURL string
}

func NewGitHubProvider(cfg config.OAuthConfig) *GitHubProvider {
	return &GitHubProvider{
		config: newConfig(cfg, github.Endpoint, "user:email", "read:user"),
		apiURL: githubAPIURL,
	}
}

func (p *GitHubProvider) Name() string {
	return "github"
}

func (p *GitHubProvider) GetConsentURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode reads the GitHub profile. Accounts with a private email fall
// back to the verified addresses listed under /user/emails.
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	client, err := exchange(ctx, p.config, code)
	if err != nil {
		return nil, err
	}

	var profile struct {
		ID        int    `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, p.Name(), p.apiURL+"/user", &profile); err != nil {
		return nil, err
	}

	if profile.Email == "" {
		if profile.Email, err = p.verifiedEmail(ctx, client); err != nil {
			return nil, err
		}
	}

	return newUserInfo(p.Name(), strconv.Itoa(profile.ID), profile.Email, profile.Name, profile.Login, profile.AvatarURL)
}

// verifiedEmail prefers the primary verified address, then any verified one.
func (p *GitHubProvider) verifiedEmail(ctx context.Context, client *http.Client) (string, error) {
	var addresses []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, p.Name(), p.apiURL+"/user/emails", &addresses); err != nil {
		return "", err
	}

	fallback := ""
	for _, a := range addresses {
		if !a.Verified {
			continue
		}
		if a.Primary {
			return a.Email, nil
		}
		if fallback == "" {
			fallback = a.Email
		}
	}
	if fallback == "" {
		return "", ErrNoEmail
	}
	return fallback, nil
}
