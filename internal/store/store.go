/*
Package store is a typed facade over an embedded SQLite database. Wrapping
database/sql rather than exposing it directly keeps the store's public
surface intentional: callers get typed methods for builds, deployments, and
apps, never a raw *sql.DB.
*/
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	// the blank import registers the go-sqlite3 driver with database/sql via
	// its init() side effect; the package itself is never referenced.
	_ "github.com/mattn/go-sqlite3"
)

// acquireTimeout bounds every store operation: the 30-second acquire/busy
// timeout called out by the concurrency model.
const acquireTimeout = 30 * time.Second

// Store wraps the SQLite connection pool and the logger used to report
// migration and query failures. Fields are unexported so external packages
// are restricted to the methods defined here.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (creating if absent) the SQLite database at dbPath, applies
// WAL journaling and a busy timeout via DSN parameters, bounds the
// connection pool, and runs schema migration. The parent directory of
// dbPath is created if it does not already exist.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %q: %w", dir, err)
	}

	// _journal_mode=WAL allows concurrent readers alongside the single
	// writer; _busy_timeout makes SQLITE_BUSY waits block instead of
	// failing immediately when another connection holds the write lock.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d", dbPath, acquireTimeout.Milliseconds())

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %q: %w", dbPath, err)
	}
	conn.SetMaxOpenConns(10)

	store := &Store{conn: conn, logger: logger}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	logger.Info("store opened and schema migrated", "path", dbPath)
	return store, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

// withTimeout derives a bounded context for a single store operation.
func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), acquireTimeout)
}
