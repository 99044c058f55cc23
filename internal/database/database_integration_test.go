//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/models"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *Config {
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

	return &Config{
		Driver:        config.DriverPostgres,
		Host:          host,
		Port:          port.Port(),
		User:          "fintrack",
		Password:      "fintrack",
		DBName:        "fintrack",
		SSLMode:       "disable",
		MigrationsURL: "file://../../migrations",
	}
}

func TestPostgresMigrations(t *testing.T) {
	cfg := startPostgres(t)

	manager, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer manager.Close()

	if err := manager.RunMigrations(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	// A second run is a no-op.
	if err := manager.RunMigrations(); err != nil {
		t.Fatalf("second migration run failed: %v", err)
	}

	db := manager.DB()

	t.Run("models_round_trip", func(t *testing.T) {
		account := &models.Account{Name: "Main", OpeningBalance: 100000, Balance: 100000, IsActive: true}
		if err := db.Create(account).Error; err != nil {
			t.Fatalf("failed to create account: %v", err)
		}

		groceries := &models.Category{Name: "Groceries", Type: models.CategoryTypeExpense}
		if err := db.Create(groceries).Error; err != nil {
			t.Fatalf("failed to create category: %v", err)
		}

		op := &models.Operation{
			Type:       models.OperationTypeExpense,
			Amount:     15000,
			AccountID:  account.ID,
			CategoryID: &groceries.ID,
			Date:       "2024-03-10",
		}
		if err := db.Create(op).Error; err != nil {
			t.Fatalf("failed to create operation: %v", err)
		}

		var loaded models.Operation
		if err := db.First(&loaded, "id = ?", op.ID).Error; err != nil {
			t.Fatalf("failed to load operation: %v", err)
		}
		if loaded.Amount != 15000 || loaded.Date != "2024-03-10" || !loaded.HasCategory(groceries.ID) {
			t.Errorf("operation did not round trip: %+v", loaded)
		}
	})

	t.Run("budget_unique_per_category_month", func(t *testing.T) {
		category := &models.Category{Name: "Transport", Type: models.CategoryTypeExpense}
		if err := db.Create(category).Error; err != nil {
			t.Fatalf("failed to create category: %v", err)
		}

		first := &models.Budget{CategoryID: category.ID, Month: "2024-03", Limit: 5000}
		if err := db.Create(first).Error; err != nil {
			t.Fatalf("failed to create budget: %v", err)
		}

		dup := &models.Budget{CategoryID: category.ID, Month: "2024-03", Limit: 9000}
		if err := db.Create(dup).Error; err == nil {
			t.Error("expected unique index violation")
		}
	})

	t.Run("migrate_down", func(t *testing.T) {
		mig, err := NewMigrate(cfg)
		if err != nil {
			t.Fatalf("failed to create migrate: %v", err)
		}
		defer CloseMigrate(mig)

		if err := mig.Down(); err != nil {
			t.Fatalf("failed to migrate down: %v", err)
		}
		if db.Migrator().HasTable("operations") {
			t.Error("operations table should be dropped")
		}
	})
}
