// Package config loads deployment settings from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries the settings the storage layer and the migration tool need.
// Schema changes are never applied at process startup; the migrations and
// seeds directories are consumed only by cmd/migrate.
type Config struct {
	DatabaseURL     string        `env:"ONEAUTH_PG_DSN"`
	MaxOpenConns    int           `env:"ONEAUTH_PG_MAX_OPEN" envDefault:"10"`
	MaxIdleConns    int           `env:"ONEAUTH_PG_MAX_IDLE" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"ONEAUTH_PG_CONN_LIFETIME" envDefault:"30m"`
	MigrationsDir   string        `env:"ONEAUTH_MIGRATIONS_DIR" envDefault:"ops/migrations/sql"`
	SeedsDir        string        `env:"ONEAUTH_SEEDS_DIR" envDefault:"ops/migrations/seeds"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
