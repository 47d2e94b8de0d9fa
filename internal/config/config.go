/*
Package config
File: config.go
Description:
    Runtime settings for the Habit Galaxy server, read from the environment.

    The static universe (habits, bosses, items, odds) lives in galaxy.yaml and
    is loaded by internal/game. Everything here is deployment specific: where
    to listen, where the database lives, secrets and timings.
*/

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds every environment-driven knob of the server.
type Settings struct {
	Addr        string `env:"GALAXY_ADDR"         envDefault:":8081"`
	DBPath      string `env:"GALAXY_DB_PATH"      envDefault:"galaxy.db"`
	CatalogPath string `env:"GALAXY_CATALOG_PATH" envDefault:"galaxy.yaml"`

	JWTSecret string        `env:"GALAXY_JWT_SECRET"`
	TokenTTL  time.Duration `env:"GALAXY_TOKEN_TTL"  envDefault:"24h"`

	NotificationTTL time.Duration `env:"GALAXY_NOTIFICATION_TTL" envDefault:"3s"`
	Heartbeat       time.Duration `env:"GALAXY_HEARTBEAT"        envDefault:"1s"`
	// Sessions with no request for this long and no open socket are released.
	SessionIdleTTL time.Duration `env:"GALAXY_SESSION_IDLE_TTL" envDefault:"30m"`

	OutboxSize       int           `env:"GALAXY_OUTBOX_SIZE"        envDefault:"256"`
	OutboxMaxElapsed time.Duration `env:"GALAXY_OUTBOX_MAX_ELAPSED" envDefault:"30s"`
}

// Load parses Settings from the environment and validates them.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings the server cannot run with.
func (s Settings) Validate() error {
	if len(s.JWTSecret) < 16 {
		return errors.New("config: GALAXY_JWT_SECRET must be at least 16 bytes")
	}
	if s.TokenTTL <= 0 {
		return errors.New("config: GALAXY_TOKEN_TTL must be positive")
	}
	if s.NotificationTTL <= 0 || s.Heartbeat <= 0 {
		return errors.New("config: notification ttl and heartbeat must be positive")
	}
	if s.SessionIdleTTL < 0 {
		return errors.New("config: GALAXY_SESSION_IDLE_TTL must not be negative")
	}
	if s.OutboxSize <= 0 {
		return errors.New("config: GALAXY_OUTBOX_SIZE must be positive")
	}
	return nil
}
