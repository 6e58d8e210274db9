package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are the dispatcher's own knobs, read from the environment. File
// configuration covers wiring; environment covers deployment, so the same
// binary runs identically across environments.
type Settings struct {
	// StoreDriver selects the idempotency store: memory, sqlite, or bolt.
	StoreDriver string `env:"DISPATCH_STORE_DRIVER" envDefault:"memory"`

	// StorePath is the database file for the sqlite and bolt drivers.
	StorePath string `env:"DISPATCH_STORE_PATH"`

	// RetentionTTL is how long finalized idempotency records are kept. It
	// only needs to cover the upstream redelivery window.
	RetentionTTL time.Duration `env:"DISPATCH_RETENTION_TTL" envDefault:"24h"`

	// SweepInterval is how often retention eviction runs.
	SweepInterval time.Duration `env:"DISPATCH_SWEEP_INTERVAL" envDefault:"10m"`

	// ConcurrencyLimit bounds concurrently executing handlers.
	// Zero means unlimited.
	ConcurrencyLimit int64 `env:"DISPATCH_CONCURRENCY_LIMIT"`

	// LogLevel is the slog level name: debug, info, warn, or error.
	LogLevel string `env:"DISPATCH_LOG_LEVEL" envDefault:"info"`
}

// FromEnv parses Settings from the process environment.
func FromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks cross-field constraints.
func (s Settings) Validate() error {
	switch s.StoreDriver {
	case "memory":
	case "sqlite", "bolt":
		if s.StorePath == "" {
			return fmt.Errorf("DISPATCH_STORE_PATH is required for the %s driver", s.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", s.StoreDriver)
	}
	if s.RetentionTTL <= 0 {
		return fmt.Errorf("retention TTL must be positive")
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	return nil
}
