package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envconfigPrefix = "MAATI"

// Config holds the server configuration, read from MAATI_* environment
// variables.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// DatabasePath is the SQLite database file path.
	DatabasePath string `envconfig:"DB_PATH" default:"maati.db"`

	// JWTSecret signs access tokens. Required, no default.
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// AccessTokenTTL bounds the lifetime of an access token.
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`

	// RefreshTokenTTL bounds the lifetime of a refresh token.
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogRetention is how long activity-log entries are kept before the
	// periodic prune removes them.
	LogRetention time.Duration `envconfig:"LOG_RETENTION" default:"2160h"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(envconfigPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 bytes, got %d", len(cfg.JWTSecret))
	}
	return cfg, nil
}
