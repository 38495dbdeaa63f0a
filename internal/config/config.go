package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	LogLevel    string

	SessionSecret     string
	SessionExpiry     time.Duration
	SessionCookieName string
	// Cron spec for purging expired sessions and stale OAuth states.
	SessionCleanupSchedule string

	BaseURL     string
	FrontendURL string

	MetricsAddr   string
	WikiCacheSize int

	GitHub OAuthConfig
	GitLab OAuthConfig
	Google OAuthConfig

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionExpiry, err := time.ParseDuration(getEnv("SESSION_EXPIRY", "720h"))
	if err != nil {
		sessionExpiry = 30 * 24 * time.Hour
	}

	wikiCacheSize, err := strconv.Atoi(getEnv("WIKI_CACHE_SIZE", "512"))
	if err != nil || wikiCacheSize <= 0 {
		wikiCacheSize = 512
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		SessionSecret:          getEnvOrPanic("SESSION_SECRET"),
		SessionExpiry:          sessionExpiry,
		SessionCookieName:      getEnv("SESSION_COOKIE_NAME", "tandem_session"),
		SessionCleanupSchedule: getEnv("SESSION_CLEANUP_SCHEDULE", "@hourly"),

		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		WikiCacheSize: wikiCacheSize,

		GitHub: OAuthConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GITHUB_REDIRECT_URL", ""),
		},
		GitLab: OAuthConfig{
			ClientID:     getEnv("GITLAB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITLAB_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GITLAB_REDIRECT_URL", ""),
		},
		Google: OAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SecureCookies reports whether the session cookie should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.IsProduction()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
