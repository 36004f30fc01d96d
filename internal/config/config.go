package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json or console

	// Database
	DatabaseURL string

	// Redis backs the render cache, rate limiter and sessions. Empty means in-memory.
	RedisURL string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting
	RateLimitMax int // requests per minute per IP

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Cory"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
	SiteLogoURL string // env: SITE_LOGO_URL, default: "" (text only)

	// Site content file (ROI presets, categories)
	SiteConfigFile string

	// Lead handling
	LeadWebhookURL   string        // CRM endpoint receiving captured leads
	ChatWebhookURL   string        // chat widget backend
	LeadNotifyEmails []string      // sales inbox(es) notified on capture
	ForwardInterval  time.Duration // retry interval for unforwarded leads
	WebhookTimeout   time.Duration

	// Admin panel
	AdminEnabled bool

	// Rendering
	RenderCacheTTL time.Duration

	// SMTP
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // none, tls, starttls
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("ENV", "development"),
		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:3000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/corysite?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),
		RateLimitMax:  getEnvInt("RATE_LIMIT_MAX", 100),

		SiteTitle:   getEnv("SITE_TITLE", "Cory"),
		SiteTagline: getEnv("SITE_TAGLINE", "Admissions automation that never misses a lead"),
		SiteFooter:  getEnv("SITE_FOOTER", "Cory - Admissions automation"),
		SiteLogoURL: getEnv("SITE_LOGO_URL", ""),

		SiteConfigFile: getEnv("SITE_CONFIG", "site.yaml"),

		LeadWebhookURL:   getEnv("LEAD_WEBHOOK_URL", ""),
		ChatWebhookURL:   getEnv("CHAT_WEBHOOK_URL", ""),
		LeadNotifyEmails: splitList(getEnv("LEAD_NOTIFY_EMAILS", "")),
		ForwardInterval:  getEnvDuration("FORWARD_INTERVAL", 5*time.Minute),
		WebhookTimeout:   getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),

		AdminEnabled: getEnv("ADMIN_ENABLED", "") != "",

		RenderCacheTTL: getEnvDuration("RENDER_CACHE_TTL", time.Hour),

		SMTPEnabled:  getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Cory"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is switched on and minimally configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsForwardingEnabled returns true if captured leads are pushed to a CRM webhook.
func (c *Config) IsForwardingEnabled() bool {
	return c.LeadWebhookURL != ""
}
