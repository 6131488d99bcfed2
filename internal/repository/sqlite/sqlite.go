// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHAT IS STORED?
// Only dense results of successful executions, keyed by a digest of the
// request. Sampling a script means running untrusted code 10,000 times, so a
// repeated request (the same script with a different tolerance or precision)
// is answered from here instead of spinning up another sandbox.
//
// The default DSN is ":memory:": the cache lives and dies with the process.
// Point CACHE_DSN at a file to keep it across restarts.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code, so the binary also runs as the worker
// inside a minimal container image.
package sqlite

import (
	"database/sql"
	"fmt"

	// The blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database at dsn and runs migrations.
//
// dsn examples:
//   - "data/easing-cache.db" → file-based database (survives restarts)
//   - ":memory:"             → in-memory database
//
// IN-MEMORY CONNECTIONS:
// Every connection to ":memory:" opens its own, empty database. database/sql
// is a pool, so the pool is capped at one connection to keep a single cache.
func New(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if dsn == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Ping verifies the connection actually works, so a bad path surfaces
	// here rather than on the first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening.
	// In-memory databases ignore it.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs all database migrations.
// CREATE ... IF NOT EXISTS keeps every statement safe to re-run.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS dense_results (
			id         TEXT PRIMARY KEY,
			digest     TEXT NOT NULL UNIQUE,
			action     TEXT NOT NULL,
			name       TEXT NOT NULL,
			points     TEXT NOT NULL,
			duration   REAL NOT NULL DEFAULT 0,
			hits       INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			used_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_dense_results_used_at ON dense_results(used_at);
	`)
	if err != nil {
		return fmt.Errorf("creating dense_results table: %w", err)
	}
	return nil
}
