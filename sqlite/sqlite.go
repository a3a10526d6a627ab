// Package sqlite provides SQLite-based storage for wikidocu conversation
// threads.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// createSchema creates the database tables if they don't exist. Every list
// a thread carries gets its own table keyed by (thread_id, position) so that
// reloading preserves append order.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS threads (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS messages (
			thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (thread_id, position)
		);

		CREATE TABLE IF NOT EXISTS search_queries (
			thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			query TEXT NOT NULL,
			PRIMARY KEY (thread_id, position)
		);

		CREATE TABLE IF NOT EXISTS research_results (
			thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			result TEXT NOT NULL,
			PRIMARY KEY (thread_id, position)
		);

		CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			turn_index INTEGER NOT NULL,
			question TEXT NOT NULL,
			search_query TEXT NOT NULL DEFAULT '',
			route TEXT NOT NULL,
			evidence TEXT NOT NULL DEFAULT '',
			answer TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sources (
			thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			turn_id TEXT NOT NULL DEFAULT '',
			origin TEXT NOT NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			reasoning TEXT NOT NULL DEFAULT '',
			relevant_content TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (thread_id, position)
		);

		CREATE TABLE IF NOT EXISTS turn_sources (
			turn_id TEXT NOT NULL REFERENCES turns(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			origin TEXT NOT NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			reasoning TEXT NOT NULL DEFAULT '',
			relevant_content TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (turn_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_turns_thread_id ON turns(thread_id);
		CREATE INDEX IF NOT EXISTS idx_threads_updated_at ON threads(updated_at);
	`

	_, err := db.db.Exec(schema)
	return err
}
