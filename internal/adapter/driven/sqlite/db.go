package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Options configures the connection pools.
type Options struct {
	Path         string
	MaxOpenConns int           // reader pool size; the writer is always a single connection
	IdleTimeout  time.Duration // how long an idle connection is kept
	BusyTimeout  time.Duration // how long SQLite waits on a locked database
}

// DB pairs a single-connection writer pool with a reader pool over the same
// database file. SQLite serializes writers, so one writer connection keeps
// "database is locked" errors away while WAL lets readers proceed.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens the database at opts.Path in WAL mode with the configured busy
// timeout, NORMAL synchronous writes, foreign keys and a 64MB page cache.
func NewDB(ctx context.Context, opts Options) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		opts.Path,
		opts.BusyTimeout.Milliseconds(),
	)
	return openDSN(ctx, dsn, opts)
}

func openDSN(ctx context.Context, dsn string, opts Options) (*DB, error) {
	if opts.MaxOpenConns < 1 {
		opts.MaxOpenConns = 1
	}

	writer, err := openPool(ctx, dsn, 1, opts.IdleTimeout)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	reader, err := openPool(ctx, dsn, opts.MaxOpenConns, opts.IdleTimeout)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader, path: opts.Path}, nil
}

func openPool(ctx context.Context, dsn string, maxOpen int, idle time.Duration) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetConnMaxIdleTime(idle)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Ping checks both pools.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Writer.PingContext(ctx); err != nil {
		return fmt.Errorf("ping writer: %w", err)
	}
	if err := db.Reader.PingContext(ctx); err != nil {
		return fmt.Errorf("ping reader: %w", err)
	}
	return nil
}

// Close closes both pools and returns the first error.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}
	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}
