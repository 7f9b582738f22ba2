// Package migration renders the shop schema as DDL and applies it.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marshallshelly/costume-shop/pkg/registry"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// defaultLockID is the advisory lock serialising concurrent resets.
const defaultLockID int64 = 7_432_901

// Executor applies schema DDL against a database.
type Executor struct {
	db      *runtime.DB
	tables  []*schema.TableMetadata
	planner *Planner
	lockID  int64
	logger  *slog.Logger
}

// NewExecutor creates an executor for tables. The tables are reordered by
// their foreign key dependencies when the statements are planned.
func NewExecutor(db *runtime.DB, tables []*schema.TableMetadata) *Executor {
	return &Executor{
		db:      db,
		tables:  tables,
		planner: NewPlanner(),
		lockID:  defaultLockID,
		logger:  slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used to report applied statements.
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Plan returns the drop-and-create statements CreateTables would run.
func (e *Executor) Plan() ([]string, error) {
	sorted, err := registry.SortByDependency(e.tables)
	if err != nil {
		return nil, fmt.Errorf("failed to order tables: %w", err)
	}
	return e.planner.ResetStatements(sorted), nil
}

// CreateTables drops every table if present and recreates it empty. It is
// destructive and runs as one transaction holding an advisory lock, so a
// failure leaves the previous schema in place.
func (e *Executor) CreateTables(ctx context.Context) error {
	statements, err := e.Plan()
	if err != nil {
		return err
	}

	start := time.Now()
	err = e.db.InTx(ctx, func(q runtime.Querier) error {
		if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", e.lockID); err != nil {
			return fmt.Errorf("failed to acquire schema lock: %w", err)
		}
		for i, stmt := range statements {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return &runtime.MigrationError{Statement: i + 1, SQL: stmt, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Error("schema reset failed", "error", err)
		return err
	}

	e.logger.Info("schema reset",
		"tables", len(e.tables),
		"statements", len(statements),
		"duration", time.Since(start))
	return nil
}
