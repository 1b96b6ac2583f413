package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/pageza/proteinpick/backend/config"
	"github.com/pageza/proteinpick/backend/internal/database"
	"github.com/pageza/proteinpick/backend/internal/observability"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	migrationsDir := flag.String("dir", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	log := observability.NewLogger(observability.LogConfig{
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      "console",
		ServiceName: "proteinpick-migrate",
	})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("DATABASE_URL is not set and configuration could not be loaded")
		}
		dsn = database.PostgresDSN(cfg)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()

	if *rollback {
		name, err := database.RollbackLastMigration(ctx, db, *migrationsDir)
		if err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	applied, err := database.ApplySQLMigrations(ctx, db, *migrationsDir, log)
	if err != nil {
		log.Fatal().Err(err).Strs("applied", applied).Msg("migration failed")
	}
	fmt.Printf("All migrations applied successfully (%d new).\n", len(applied))
}
