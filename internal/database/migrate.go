package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/proteinpick/backend/internal/model"
)

const rollbackSuffix = "_rollback.sql"

// sqliteSearchView mirrors migrations/000002 for SQLite. taste_keywords holds
// id-only references; labels are hydrated from the catalog at read time.
const sqliteSearchView = `
CREATE VIEW IF NOT EXISTS flavor_search_view AS
SELECT
	f.id AS id,
	p.brand AS brand,
	p.product_name AS product_name,
	f.flavor_name AS flavor_name,
	f.summary_text AS summary_text,
	f.sweetness AS sweetness,
	f.fishy AS fishy,
	f.artificial AS artificial,
	f.bloating AS bloating,
	f.water AS water,
	f.milk AS milk,
	COALESCE(f.image_url, p.image_url) AS image_url,
	p.protein_type AS protein_type,
	(SELECT json_group_array(json_object('id', ftk.taste_keyword_id))
	   FROM (SELECT taste_keyword_id FROM flavor_taste_keywords
	          WHERE flavor_id = f.id ORDER BY position) AS ftk) AS taste_keywords
FROM flavors f
JOIN products p ON p.id = f.product_id`

// RunMigrations prepares the schema. SQLite uses GORM auto-migration plus the
// search view; Postgres applies the SQL files in migrationsDir.
func RunMigrations(ctx context.Context, db *gorm.DB, migrationsDir string, log zerolog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info().Msg("using GORM auto-migration for SQLite")
		if err := db.WithContext(ctx).AutoMigrate(
			&model.Product{},
			&model.Flavor{},
			&model.TasteKeyword{},
			&model.FlavorTasteKeyword{},
		); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		if err := db.WithContext(ctx).Exec(sqliteSearchView).Error; err != nil {
			return fmt.Errorf("failed to create search view: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	_, err = ApplySQLMigrations(ctx, sqlDB, migrationsDir, log)
	return err
}

// ApplySQLMigrations executes every pending *.sql file in migrationsDir in
// name order, each in its own transaction, and records it in
// schema_migrations. It returns the names of the files applied.
func ApplySQLMigrations(ctx context.Context, db *sql.DB, migrationsDir string, log zerolog.Logger) ([]string, error) {
	files, err := migrationFiles(migrationsDir)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []string
	for _, file := range files {
		version := migrationVersion(file)

		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = $1", version).Scan(&count); err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debug().Str("migration", file).Msg("skipping migration (already applied)")
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, file))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("failed to start transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", version, file); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %s: %w", file, err)
		}

		log.Info().Str("migration", file).Msg("applied migration")
		applied = append(applied, file)
	}

	return applied, nil
}

// RollbackLastMigration runs the rollback file of the most recently applied
// migration and removes its record.
func RollbackLastMigration(ctx context.Context, db *sql.DB, migrationsDir string) (string, error) {
	var version, name string
	err := db.QueryRowContext(ctx, `
		SELECT version, name
		FROM schema_migrations
		ORDER BY applied_at DESC, version DESC
		LIMIT 1
	`).Scan(&version, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(migrationsDir, strings.TrimSuffix(name, ".sql")+rollbackSuffix)
	content, err := os.ReadFile(rollbackPath)
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file %s: %w", rollbackPath, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("failed to execute rollback: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit rollback: %w", err)
	}
	return name, nil
}

// migrationFiles lists forward migrations (VERSION_NAME.sql) in order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func migrationVersion(file string) string {
	return strings.SplitN(file, "_", 2)[0]
}
