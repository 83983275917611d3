package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the engagement service.
// Environment variables are parsed from the ENGAGEMENT_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: sqlite | postgres | auto
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration
	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/engagement.db"`

	// Activity feed retention window (number of records kept in memory)
	FeedCapacity int `envconfig:"FEED_CAPACITY" default:"100"`

	// Leaderboard cache
	LeaderboardSize           int `envconfig:"LEADERBOARD_SIZE" default:"100"`
	LeaderboardRefreshSeconds int `envconfig:"LEADERBOARD_REFRESH_SECONDS" default:"15"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to
// "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
	}
	if c.FeedCapacity <= 0 {
		return fmt.Errorf("FEED_CAPACITY must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with ENGAGEMENT_, e.g. ENGAGEMENT_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ENGAGEMENT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Int("feed_capacity", cfg.FeedCapacity).
		Int("leaderboard_size", cfg.LeaderboardSize).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config suitable for unit tests: sqlite driver,
// small caches, no environment dependence.
func NewForTesting() *Config {
	return &Config{
		BuildTarget:               "local",
		DBDriver:                  "sqlite",
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		SQLitePath:                "", // callers supply a temp path
		FeedCapacity:              10,
		LeaderboardSize:           10,
		LeaderboardRefreshSeconds: 1,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
