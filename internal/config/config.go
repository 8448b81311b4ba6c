package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-driven setting. Load fails fast on the
// required ones so a misconfigured deploy dies at startup, not on the
// first request.
type Config struct {
	Env                 string
	Port                int
	DatabaseURL         string
	AllowedOrigins      []string
	JWTSecret           string
	SessionDurationDays int
	SessionCookieName   string

	// Outbound n8n WhatsApp webhook. URL empty means the webhook path is
	// disabled and replies go through the local persist fallback.
	WebhookURL      string
	WebhookUser     string
	WebhookPassword string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		Port:                getEnvInt("PORT", 4000),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		SessionDurationDays: getEnvInt("SESSION_DURATION_DAYS", 7),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "mr_session"),
		WebhookURL:          strings.TrimRight(strings.TrimSpace(os.Getenv("N8N_WHATSAPP_WEBHOOK_URL")), "/"),
		WebhookUser:         strings.TrimSpace(os.Getenv("N8N_WHATSAPP_WEBHOOK_USER")),
		WebhookPassword:     strings.TrimSpace(os.Getenv("N8N_WHATSAPP_WEBHOOK_PASSWORD")),
	}

	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing required environment variable: DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variable: JWT_SECRET")
	}
	if cfg.SessionDurationDays <= 0 {
		cfg.SessionDurationDays = 7
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
