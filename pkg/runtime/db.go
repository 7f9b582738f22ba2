package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
)

// Querier is the statement surface shared by the pool and an open transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the shared connection pool handed to every adapter.
type DB struct {
	pool   *pgxpool.Pool
	config *Config
}

// Config represents database configuration.
type Config struct {
	// URL, when set, takes precedence over the discrete fields below.
	URL string

	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// Logger receives pgx trace events at TraceLevel and above.
	Logger     *slog.Logger
	TraceLevel slog.Level
}

// NewDB creates a new DB instance from a connection pool.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{
		pool:   pool,
		config: &Config{},
	}
}

// Connect opens the pool described by config and verifies it with a ping.
func Connect(ctx context.Context, config *Config) (*DB, error) {
	connString := config.URL
	if connString == "" {
		connString = buildConnectionString(config)
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}
	if config.Logger != nil {
		poolConfig.ConnConfig.Tracer = newTracer(config.Logger, config.TraceLevel)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		if config.Logger != nil {
			config.Logger.Error("database ping failed",
				"host", poolConfig.ConnConfig.Host,
				"database", poolConfig.ConnConfig.Database,
				"error", err)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if config.Logger != nil {
		config.Logger.Info("database pool ready",
			"host", poolConfig.ConnConfig.Host,
			"port", poolConfig.ConnConfig.Port,
			"database", poolConfig.ConnConfig.Database,
			"max_conns", poolConfig.MaxConns)
	}

	return &DB{
		pool:   pool,
		config: config,
	}, nil
}

// Pool returns the underlying pgxpool.Pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Database returns the name of the database the pool is connected to.
func (db *DB) Database() string {
	return db.pool.Config().ConnConfig.Database
}

// Close drains and closes the pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
		if db.config != nil && db.config.Logger != nil {
			db.config.Logger.Info("database pool closed")
		}
	}
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Exec executes a statement without returning any rows.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return db.pool.Exec(ctx, sql, args...)
}

// Query executes a statement that returns rows.
func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.pool.Query(ctx, sql, args...)
}

// QueryRow executes a statement that returns at most one row.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

// InTx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back on error or panic.
func (db *DB) InTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(tx)
}

// buildConnectionString builds a PostgreSQL connection string from config.
func buildConnectionString(config *Config) string {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	port := config.Port
	if port == 0 {
		port = 5432
	}

	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s sslmode=%s",
		config.Host,
		port,
		config.Database,
		sslMode,
	)
	if config.User != "" {
		connString += " user=" + config.User
	}
	if config.Password != "" {
		connString += " password=" + config.Password
	}
	return connString
}

// newTracer forwards pgx trace events to slog.
func newTracer(logger *slog.Logger, level slog.Level) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(ctx context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
			attrs := make([]slog.Attr, 0, len(data))
			for k, v := range data {
				attrs = append(attrs, slog.Any(k, v))
			}
			logger.LogAttrs(ctx, slogLevel(lvl), msg, attrs...)
		}),
		LogLevel: traceLevel(level),
	}
}

func slogLevel(lvl tracelog.LogLevel) slog.Level {
	switch lvl {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		return slog.LevelDebug
	case tracelog.LogLevelInfo:
		return slog.LevelInfo
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func traceLevel(level slog.Level) tracelog.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return tracelog.LogLevelDebug
	case level <= slog.LevelInfo:
		return tracelog.LogLevelInfo
	case level <= slog.LevelWarn:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}

// DefaultConfig returns a default database configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:       "localhost",
		Port:       5432,
		Database:   "costume_shop_db_dev",
		SSLMode:    "disable",
		MaxConns:   10,
		MinConns:   2,
		TraceLevel: slog.LevelWarn,
	}
}
