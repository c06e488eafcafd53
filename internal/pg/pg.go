// Package pg owns the PostgreSQL connection and the storage error taxonomy
// shared by every store in this module.
package pg

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"oneauth.org/internal/config"
)

// Open connects to PostgreSQL with a bounded pool. Operations queue on the
// pool and fail with the caller's context error once it expires; nothing in
// this layer blocks indefinitely waiting for a connection.
func Open(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
