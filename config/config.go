package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from the environment (and .env files).
type Config struct {
	AppEnv string
	Port   string

	DatabaseURL string

	SessionCookieName     string
	SessionMaxAge         time.Duration
	SessionCookieSecure   bool
	SessionConflictPolicy string

	AdminJWTSecret string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	ExportPublicURL string

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string
}

// Load reads .env (or .env.test when APP_ENV=test) if present, then the environment.
func Load() (*Config, error) {
	envFile := ".env"
	if os.Getenv("APP_ENV") == "test" {
		envFile = ".env.test"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests need not touch the process env.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		AppEnv:                get("APP_ENV", "production"),
		Port:                  get("PORT", "3333"),
		DatabaseURL:           getenv("DATABASE_URL"),
		SessionCookieName:     get("SESSION_COOKIE_NAME", "sessionId"),
		SessionConflictPolicy: get("SESSION_CONFLICT_POLICY", "reuse"),
		AdminJWTSecret:        getenv("ADMIN_JWT_SECRET"),
		S3Bucket:              getenv("S3_BUCKET"),
		S3Region:              get("S3_REGION", getenv("AWS_REGION")),
		S3Endpoint:            getenv("S3_ENDPOINT"),
		ExportPublicURL:       get("EXPORT_PUBLIC_URL", getenv("CLOUDFRONT_URL")),
		LogLevel:              get("LOG_LEVEL", "info"),
		LogFormat:             get("LOG_FORMAT", "json"),
	}

	switch cfg.AppEnv {
	case "development", "test", "production":
	default:
		return nil, fmt.Errorf("APP_ENV must be development, test or production, got %q", cfg.AppEnv)
	}

	if cfg.DatabaseURL == "" && getenv("DB_HOST") != "" {
		cfg.DatabaseURL = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getenv("DB_HOST"),
			getenv("DB_USER"),
			getenv("DB_PASSWORD"),
			getenv("DB_NAME"),
			get("DB_PORT", "5432"),
		)
	}
	if cfg.DatabaseURL == "" && cfg.AppEnv != "development" {
		return nil, errors.New("DATABASE_URL (or DB_HOST and friends) must be set")
	}

	var err error
	if cfg.SessionMaxAge, err = time.ParseDuration(get("SESSION_MAX_AGE", "168h")); err != nil {
		return nil, fmt.Errorf("SESSION_MAX_AGE: %w", err)
	}
	if cfg.SessionMaxAge <= 0 {
		return nil, errors.New("SESSION_MAX_AGE must be positive")
	}
	if cfg.SessionCookieSecure, err = strconv.ParseBool(get("SESSION_COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("SESSION_COOKIE_SECURE: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "20"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "40")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

// InMemory reports whether the process should run without Postgres. Only
// development allows an empty DATABASE_URL.
func (c *Config) InMemory() bool { return c.DatabaseURL == "" }

func (c *Config) ExportEnabled() bool { return c.S3Bucket != "" }

func (c *Config) RateLimitEnabled() bool { return c.RateLimitRPS > 0 }
