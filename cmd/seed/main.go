package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/pageza/proteinpick/backend/config"
	"github.com/pageza/proteinpick/backend/internal/database"
	"github.com/pageza/proteinpick/backend/internal/observability"
)

func main() {
	file := flag.String("file", "catalog.json", "JSON catalog snapshot to load")
	migrationsDir := flag.String("migrations", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	log := observability.NewLogger(observability.LogConfig{Format: "console", ServiceName: "proteinpick-seed"})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	catalog, err := database.LoadCatalog(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read catalog")
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.RunMigrations(ctx, db, *migrationsDir, log); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if err := database.SeedCatalog(ctx, db, catalog); err != nil {
		log.Fatal().Err(err).Msg("failed to seed catalog")
	}

	fmt.Printf("Seeded %d products, %d flavors, %d taste keywords\n",
		len(catalog.Products), len(catalog.Flavors), len(catalog.Keywords))
}
