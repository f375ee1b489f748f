// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/unclebandit/adsadmin-backend/internal/config"
	"github.com/unclebandit/adsadmin-backend/internal/logging"
)

var (
	handle  *sql.DB
	initErr error
	once    sync.Once
)

// Handle returns the process-wide connection pool, opening it on first use.
// Later calls return the same pool (or the same error) whatever cfg they pass.
func Handle(cfg *config.Config) (*sql.DB, error) {
	once.Do(func() {
		handle, initErr = Open(cfg)
	})
	return handle, initErr
}

// Open connects and pings a new pool. Most callers want Handle.
func Open(cfg *config.Config) (*sql.DB, error) {
	logging.Info().
		Str("db_host", cfg.DBHost).
		Str("db_name", cfg.DBName).
		Str("db_user", cfg.DBUser).
		Msg("connecting to database")

	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logging.Info().Msg("connected to database")
	return conn, nil
}
