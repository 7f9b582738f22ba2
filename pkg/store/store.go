// Package store implements the data-access adapters for costumes, customers,
// orders and the links between orders and costumes. Every adapter method is a
// single round trip to PostgreSQL except the link adapter's checked writes,
// which run in one transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/registry"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// Store bundles the adapters over one shared pool.
type Store struct {
	db       *runtime.DB
	registry *registry.Registry

	Costumes      *Costumes
	Customers     *Customers
	Orders        *Orders
	OrderCostumes *OrderCostumes
}

// New builds every adapter over db.
func New(db *runtime.DB) (*Store, error) {
	reg, err := models.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to register models: %w", err)
	}

	costumes, err := newTable[models.Costume](db, reg, "costume")
	if err != nil {
		return nil, err
	}
	customers, err := newTable[models.Customer](db, reg, "customer")
	if err != nil {
		return nil, err
	}
	orders, err := newTable[models.Order](db, reg, "order")
	if err != nil {
		return nil, err
	}
	links, err := newOrderCostumes(db, reg)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:            db,
		registry:      reg,
		Costumes:      &Costumes{costumes},
		Customers:     newCustomers(customers, orders.meta),
		Orders:        newOrders(orders, customers.meta),
		OrderCostumes: links,
	}, nil
}

// Tables returns the metadata of the four tables in registration order.
func (s *Store) Tables() []*schema.TableMetadata {
	return s.registry.Tables()
}

// DB returns the pool the adapters share.
func (s *Store) DB() *runtime.DB {
	return s.db
}

// table implements the id-keyed CRUD shared by the entity adapters.
type table[T any] struct {
	db     *runtime.DB
	meta   *schema.TableMetadata
	entity string
	stmts  statements
	scan   pgx.RowToFunc[T]
}

func newTable[T any](db *runtime.DB, reg *registry.Registry, entity string) (*table[T], error) {
	var zero T
	meta, err := reg.Get(zero)
	if err != nil {
		return nil, err
	}
	stmts, err := buildStatements(meta)
	if err != nil {
		return nil, err
	}
	return &table[T]{
		db:     db,
		meta:   meta,
		entity: entity,
		stmts:  stmts,
		scan:   rowTo[T](meta),
	}, nil
}

func (t *table[T]) create(ctx context.Context, rec T) (*T, error) {
	if err := validate(&rec); err != nil {
		return nil, fmt.Errorf("create %s: %w", t.entity, err)
	}
	return t.one(ctx, t.stmts.insert, valuesOf(&rec, t.stmts.writable)...)
}

func (t *table[T]) all(ctx context.Context) ([]T, error) {
	return t.many(ctx, t.stmts.selectAll)
}

func (t *table[T]) byID(ctx context.Context, id int) (*T, error) {
	rec, err := t.one(ctx, t.stmts.selectByID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, runtime.NotFound("get", t.entity, id)
	}
	return rec, err
}

func (t *table[T]) update(ctx context.Context, id int, rec T) (*T, error) {
	if err := validate(&rec); err != nil {
		return nil, fmt.Errorf("update %s: %w", t.entity, err)
	}
	args := append(valuesOf(&rec, t.stmts.writable), id)
	updated, err := t.one(ctx, t.stmts.update, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, runtime.NotFound("update", t.entity, id)
	}
	return updated, err
}

func (t *table[T]) delete(ctx context.Context, id int) (*T, error) {
	rec, err := t.one(ctx, t.stmts.delete, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, runtime.NotFound("delete", t.entity, id)
	}
	return rec, err
}

// one runs a statement expected to return a single row. pgx.ErrNoRows is
// returned unwrapped so callers can turn it into a NotFoundError.
func (t *table[T]) one(ctx context.Context, sql string, args ...any) (*T, error) {
	return queryOne(ctx, t.db, t.scan, sql, args...)
}

func (t *table[T]) many(ctx context.Context, sql string, args ...any) ([]T, error) {
	return queryMany(ctx, t.db, t.scan, sql, args...)
}

func queryOne[T any](ctx context.Context, q runtime.Querier, scan pgx.RowToFunc[T], sql string, args ...any) (*T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, runtime.Classify(sql, err)
	}
	rec, err := pgx.CollectOneRow(rows, scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, runtime.Classify(sql, err)
	}
	return &rec, nil
}

func queryMany[T any](ctx context.Context, q runtime.Querier, scan pgx.RowToFunc[T], sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, runtime.Classify(sql, err)
	}
	recs, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, runtime.Classify(sql, err)
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

func validate(rec any) error {
	if v, ok := rec.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
