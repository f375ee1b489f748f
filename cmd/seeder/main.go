//cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"time"

	"github.com/unclebandit/adsadmin-backend/internal/config"
	"github.com/unclebandit/adsadmin-backend/internal/db"
	"github.com/unclebandit/adsadmin-backend/internal/logging"
)

func main() {
	schemaOnly := flag.Bool("schema-only", false, "apply the schema without seed rows")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	conn, err := db.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, conn); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
	logging.Info().Msg("schema applied")

	if *schemaOnly {
		return
	}
	if err := db.Seed(ctx, conn); err != nil {
		logging.Fatal().Err(err).Msg("seeding failed")
	}
	logging.Info().Msg("database seeding completed successfully")
}
