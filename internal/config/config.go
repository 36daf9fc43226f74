package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration. It is loaded once at startup
// and treated as immutable afterwards.
type Config struct {
	Port            int      `env:"PORT" envDefault:"8080"`
	DatabasePath    string   `env:"DATABASE_PATH" envDefault:"./todo.db"`
	JWTSecret       string   `env:"JWT_SECRET"`
	JWTAlgorithm    string   `env:"JWT_ALGORITHM" envDefault:"HS256"`
	TokenTTLMinutes int      `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
	AppEnv          string   `env:"APP_ENV" envDefault:"production"`

	// GeneratedSecret reports that JWT_SECRET was absent and an ephemeral
	// one was generated. Only possible when APP_ENV=demo; issued tokens do
	// not survive a restart.
	GeneratedSecret bool `env:"-"`
}

var validAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if !validAlgorithms[cfg.JWTAlgorithm] {
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q (want HS256, HS384 or HS512)", cfg.JWTAlgorithm)
	}

	if cfg.TokenTTLMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", cfg.TokenTTLMinutes)
	}

	if cfg.JWTSecret == "" {
		// Auto-generating a signing secret is only acceptable for throwaway
		// demo deployments; a production process must be given one.
		if cfg.AppEnv != "demo" {
			return nil, errors.New("JWT_SECRET is not set; refusing to start (set APP_ENV=demo to generate an ephemeral secret)")
		}
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}

// TokenTTL returns the configured access token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}
