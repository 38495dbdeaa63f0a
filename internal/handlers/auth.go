package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dimitrije/tandem-api/internal/config"
	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/middleware"
	"github.com/dimitrije/tandem-api/internal/oauth"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const exchangeTimeout = 30 * time.Second

type AuthHandler struct {
	cfg            *config.Config
	providers      map[string]oauth.Provider
	states         *oauth.StateStore
	userService    UserServiceInterface
	sessionService SessionServiceInterface
	tokens         *services.SessionTokenService
	log            *logger.Logger
}

func NewAuthHandler(
	cfg *config.Config,
	states *oauth.StateStore,
	userService UserServiceInterface,
	sessionService SessionServiceInterface,
	tokens *services.SessionTokenService,
	log *logger.Logger,
) *AuthHandler {
	h := &AuthHandler{
		cfg:            cfg,
		providers:      make(map[string]oauth.Provider),
		states:         states,
		userService:    userService,
		sessionService: sessionService,
		tokens:         tokens,
		log:            log,
	}

	if cfg.GitHub.ClientID != "" {
		h.providers["github"] = oauth.NewGitHubProvider(cfg.GitHub)
	}
	if cfg.GitLab.ClientID != "" {
		h.providers["gitlab"] = oauth.NewGitLabProvider(cfg.GitLab)
	}
	if cfg.Google.ClientID != "" {
		h.providers["google"] = oauth.NewGoogleProvider(cfg.Google)
	}

	return h
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	state, err := h.states.New()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	_ = c.JSON(200, dto.ConsentURLResponse{
		URL: p.GetConsentURL(state),
	})
}

// Callback finishes the OAuth flow: it signs the user in, opens a session
// and sets the session cookie.
func (h *AuthHandler) Callback(c *drift.Context) {
	p, ok := h.providers[c.Param("provider")]
	if !ok {
		c.BadRequest("unsupported provider")
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		c.BadRequest("missing state parameter")
		return
	}
	if !h.states.Redeem(state) {
		c.BadRequest("invalid or expired state")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		c.BadRequest("missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), exchangeTimeout)
	defer cancel()

	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrNoEmail) {
			c.BadRequest("your account has no verified email address")
			return
		}
		h.log.Warn("oauth exchange failed", "provider", p.Name(), "error", err)
		c.Unauthorized("failed to exchange code")
		return
	}

	user, err := h.userService.FindOrCreateFromOAuth(ctx, userInfo)
	if err != nil {
		respondError(c, h.log, err, "failed to sign in")
		return
	}

	expiresAt := time.Now().Add(h.tokens.Expiry())
	session, err := h.sessionService.Create(ctx, user.ID, c.GetHeader("User-Agent"), expiresAt)
	if err != nil {
		respondError(c, h.log, err, "failed to create session")
		return
	}

	token, err := h.tokens.Issue(session.ID, user.ID, user.Email, expiresAt)
	if err != nil {
		respondError(c, h.log, err, "failed to create session")
		return
	}

	http.SetCookie(c.Response, &http.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	_ = c.JSON(200, dto.SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.sessionService.Revoke(c.Request.Context(), session.ID); err != nil {
		respondError(c, h.log, err, "failed to revoke session")
		return
	}

	h.clearCookie(c)
	_ = c.JSON(200, dto.MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.sessionService.RevokeAllForUser(c.Request.Context(), session.UserID); err != nil {
		respondError(c, h.log, err, "failed to revoke sessions")
		return
	}

	h.clearCookie(c)
	_ = c.JSON(200, dto.MessageResponse{Message: "all sessions logged out"})
}

func (h *AuthHandler) clearCookie(c *drift.Context) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}
