package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis backs the HTTP rate limiter when set; otherwise limits are per process.
	RedisURL string

	// Access tokens
	JWTSecret    string
	OIDCIssuer   string
	OIDCClientID string

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// Public links
	PublicLinkTokenLength int

	// HTTP requests allowed per client IP per minute
	HTTPRateLimit int
}

// devJWTSecret signs tokens when JWT_SECRET is unset. Only development may use it.
const devJWTSecret = "change-me-in-production-min-32-chars"

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                   getEnv("ENV", "development"),
		ServerAddr:            getEnv("SERVER_ADDR", ":3000"),
		BaseURL:               getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:           getEnv("DATABASE_URL", "postgres://localhost:5432/wishlist?sslmode=disable"),
		RedisURL:              getEnv("REDIS_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", devJWTSecret),
		OIDCIssuer:            getEnv("OIDC_ISSUER", ""),
		OIDCClientID:          getEnv("OIDC_CLIENT_ID", ""),
		CORSOrigins:           getEnv("CORS_ORIGINS", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		PublicLinkTokenLength: getEnvInt("PUBLIC_LINK_TOKEN_LENGTH", 32),
		HTTPRateLimit:         getEnvInt("HTTP_RATE_LIMIT", 300),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Validate rejects settings that are unsafe outside development.
func (c *Config) Validate() error {
	if !c.IsDev() && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		return errors.New("JWT_SECRET must be set outside development")
	}
	return nil
}

// OIDCEnabled reports whether OIDC-issued tokens are accepted.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
