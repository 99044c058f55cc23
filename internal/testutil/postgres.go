//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/database"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// SetupPostgresDB starts a throwaway postgres container, applies the SQL
// migrations and returns a connection to it. migrationsURL is relative to
// the calling package, e.g. "file://../../migrations".
func SetupPostgresDB(t *testing.T, migrationsURL string) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("fintrack"),
		tcpostgres.WithUsername("fintrack"),
		tcpostgres.WithPassword("fintrack"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	manager, err := database.NewManager(&database.Config{
		Driver:        config.DriverPostgres,
		Host:          host,
		Port:          port.Port(),
		User:          "fintrack",
		Password:      "fintrack",
		DBName:        "fintrack",
		SSLMode:       "disable",
		MigrationsURL: migrationsURL,
	})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	if err := manager.RunMigrations(); err != nil {
		t.Fatalf("failed to migrate postgres: %v", err)
	}
	return manager.DB()
}
