// Package runtime provides the shared connection pool and the error taxonomy
// used by the data-access layer.
package runtime

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when an id-based lookup, update or delete matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrCheckViolation is returned when a CHECK constraint rejects a value.
	ErrCheckViolation = errors.New("check constraint violation")

	// ErrNotNullViolation is returned when a required column receives NULL.
	ErrNotNullViolation = errors.New("not null violation")

	// ErrValueTooLong is returned when a value exceeds its column length.
	ErrValueTooLong = errors.New("value too long for column")

	// ErrDuplicateKey is returned when a unique constraint is violated.
	ErrDuplicateKey = errors.New("duplicate key value")
)

// SQLSTATE codes surfaced as constraint violations.
var constraintKinds = map[string]error{
	"23503": ErrForeignKeyViolation,
	"23514": ErrCheckViolation,
	"23502": ErrNotNullViolation,
	"22001": ErrValueTooLong,
	"23505": ErrDuplicateKey,
}

// NotFoundError reports an operation that found no row for an id.
type NotFoundError struct {
	Op     string
	Entity string
	ID     int
}

// NotFound builds a NotFoundError.
func NotFound(op, entity string, id int) error {
	return &NotFoundError{Op: op, Entity: entity, ID: id}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not %s %s: id %d does not exist", e.Op, e.Entity, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConstraintError is a constraint violation raised by PostgreSQL. The native
// *pgconn.PgError stays reachable through errors.As.
type ConstraintError struct {
	Kind       error
	Code       string
	Constraint string
	Table      string
	Column     string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (%s, constraint %s): %s", e.Kind, e.Code, e.Constraint, e.Message)
	}
	return fmt.Sprintf("%v (%s): %s", e.Kind, e.Code, e.Message)
}

// Is matches the violation sentinel.
func (e *ConstraintError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying error.
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// MigrationError reports the schema statement that failed.
type MigrationError struct {
	Statement int
	SQL       string
	Err       error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration error (statement %d): %v\n%s", e.Statement, e.Err, e.SQL)
}

// Unwrap returns the underlying error.
func (e *MigrationError) Unwrap() error {
	return e.Err
}

// Classify turns a statement error into a ConstraintError when PostgreSQL
// reports a known constraint violation, and into a QueryError otherwise.
func Classify(query string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if kind, ok := constraintKinds[pgErr.Code]; ok {
			return &ConstraintError{
				Kind:       kind,
				Code:       pgErr.Code,
				Constraint: pgErr.ConstraintName,
				Table:      pgErr.TableName,
				Column:     pgErr.ColumnName,
				Message:    pgErr.Message,
				Err:        err,
			}
		}
	}

	return &QueryError{Query: query, Err: err}
}

// IsConstraintViolation reports whether err is any kind of constraint violation.
func IsConstraintViolation(err error) bool {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return true
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}
