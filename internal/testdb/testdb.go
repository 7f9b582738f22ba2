//go:build integration

// Package testdb starts a disposable PostgreSQL container for integration
// tests and hands out pools with a freshly created shop schema.
package testdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marshallshelly/costume-shop/pkg/logger"
	"github.com/marshallshelly/costume-shop/pkg/migration"
	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
)

// Postgres is a running container.
type Postgres struct {
	container *postgres.PostgresContainer
	URL       string
}

// Start runs a PostgreSQL container with the test database.
func Start(ctx context.Context) (*Postgres, error) {
	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("costume_shop_db_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &Postgres{container: pgContainer, URL: connStr}, nil
}

// Terminate stops the container.
func (p *Postgres) Terminate(ctx context.Context) error {
	return p.container.Terminate(ctx)
}

// Connect opens a pool against the container.
func (p *Postgres) Connect(ctx context.Context) (*runtime.DB, error) {
	return runtime.Connect(ctx, &runtime.Config{
		URL:      p.URL,
		MaxConns: 8,
		Logger:   logger.Discard(),
	})
}

// Reset drops and recreates the shop tables, failing the test on error.
func Reset(t testing.TB, db *runtime.DB) {
	t.Helper()

	reg, err := models.NewRegistry()
	if err != nil {
		t.Fatalf("failed to register models: %v", err)
	}
	if err := migration.NewExecutor(db, reg.Tables()).CreateTables(context.Background()); err != nil {
		t.Fatalf("failed to reset schema: %v", err)
	}
}

// New starts a container, connects and resets the schema. Everything is torn
// down with the test.
func New(t testing.TB) *runtime.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := Start(ctx)
	if err != nil {
		t.Fatalf("%v", err)
	}
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	db, err := pg.Connect(ctx)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(db.Close)

	Reset(t, db)
	return db
}
