package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed sql/schema.sql
var SchemaSQL string

//go:embed sql/seed.sql
var SeedSQL string

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Seed inserts demo rows; rows that already exist are left alone.
func Seed(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, SeedSQL); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	return nil
}
