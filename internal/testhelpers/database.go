package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/pageza/proteinpick/backend/config"
	"github.com/pageza/proteinpick/backend/internal/database"
	"github.com/pageza/proteinpick/backend/internal/observability"
)

// MigrationsDir returns the absolute path of the repository's migrations/.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// SetupSQLiteDB opens a migrated in-memory SQLite database that lives for the
// duration of the test.
func SetupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: ":memory:",
	}
	db, err := database.Open(cfg, observability.Nop())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.RunMigrations(context.Background(), db, MigrationsDir(), observability.Nop()); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupPostgresDB starts a PostgreSQL container and applies the SQL
// migrations. The test is skipped when docker is unavailable.
func SetupPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	const (
		user     = "postgres"
		password = "postpass"
		name     = "proteinpick"
	)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       name,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
						user, password, host, port.Port(), name)
				}),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBDriver:   config.DriverPostgres,
		DBHost:     host,
		DBPort:     mappedPort.Port(),
		DBUser:     user,
		DBPassword: password,
		DBName:     name,
		DBSSLMode:  "disable",
	}
	db, err := database.Open(cfg, observability.Nop())
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(ctx, db, MigrationsDir(), observability.Nop()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// SeedFixture loads FixtureCatalog into db.
func SeedFixture(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := database.SeedCatalog(context.Background(), db, FixtureCatalog()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
}
