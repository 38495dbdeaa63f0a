package oauth

import (
	"context"
	"strconv"

	"github.com/dimitrije/tandem-api/internal/config"
	"golang.org/x/oauth2"
)

const gitlabAPIURL = "https://gitlab.com/api/v4"

var gitlabEndpoint = oauth2.Endpoint{
	AuthURL:  "https://gitlab.com/oauth/authorize",
	TokenURL: "https://gitlab.com/oauth/token",
}

type GitLabProvider struct {
	config *oauth2.Config
	apiURL string
}

func NewGitLabProvider(cfg config.OAuthConfig) *GitLabProvider {
	return &GitLabProvider{
		config: newConfig(cfg, gitlabEndpoint, "read_user"),
		apiURL: gitlabAPIURL,
	}
}

func (p *GitLabProvider) Name() string {
	return "gitlab"
}

func (p *GitLabProvider) GetConsentURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GitLabProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	client, err := exchange(ctx, p.config, code)
	if err != nil {
		return nil, err
	}

	var profile struct {
		ID        int    `json:"id"`
		Username  string `json:"username"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, p.Name(), p.apiURL+"/user", &profile); err != nil {
		return nil, err
	}

	return newUserInfo(p.Name(), strconv.Itoa(profile.ID), profile.Email, profile.Name, profile.Username, profile.AvatarURL)
}
