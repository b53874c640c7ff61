// Package store implements the durable coordination store for the
// agent-communication server.
//
// It uses SQLite (modernc.org/sqlite, pure Go) to persist agents, messages,
// tasks, task-dependency edges, and versioned contexts. The schema is created
// idempotently on open; the database runs in WAL mode with foreign keys on.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Config holds store configuration.
type Config struct {
	// DataDir is the directory holding the database file.
	DataDir string
}

// Store is the coordination database handle. It is created by Open and
// passed explicitly to every consumer — there is no lazily initialized
// global connection.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates the data directory if needed, opens the SQLite database
// with WAL mode, and creates the schema.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "coordination.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, logger: logger.With(zap.String("component", "store"))}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("store: schema: %w", err)
	}

	s.logger.Info("store opened", zap.String("path", dbPath))
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS agents (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT '',
			capabilities  TEXT NOT NULL DEFAULT '[]',
			registered_at TEXT NOT NULL DEFAULT (datetime('now')),
			last_ping     TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			from_agent TEXT    NOT NULL,
			to_agent   TEXT    NOT NULL,
			subject    TEXT    NOT NULL DEFAULT '',
			body       TEXT    NOT NULL,
			thread_id  TEXT    NOT NULL,
			read       INTEGER NOT NULL DEFAULT 0,
			created_at TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (from_agent) REFERENCES agents(id),
			FOREIGN KEY (to_agent)   REFERENCES agents(id)
		);

		CREATE INDEX IF NOT EXISTS idx_msg_to      ON messages(to_agent, read);
		CREATE INDEX IF NOT EXISTS idx_msg_created ON messages(created_at DESC);

		CREATE TABLE IF NOT EXISTS tasks (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			title        TEXT    NOT NULL,
			description  TEXT    NOT NULL DEFAULT '',
			status       TEXT    NOT NULL DEFAULT 'pending',
			assigned_to  TEXT,
			created_by   TEXT,
			issue_number INTEGER,
			created_at   TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at   TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_task_status   ON tasks(status);
		CREATE INDEX IF NOT EXISTS idx_task_assignee ON tasks(assigned_to);

		CREATE TABLE IF NOT EXISTS task_dependencies (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id       INTEGER NOT NULL,
			depends_on_id INTEGER NOT NULL,
			created_at    TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (task_id)       REFERENCES tasks(id) ON DELETE CASCADE,
			FOREIGN KEY (depends_on_id) REFERENCES tasks(id) ON DELETE CASCADE,
			CHECK (task_id <> depends_on_id)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_dep_unique ON task_dependencies(task_id, depends_on_id);
		CREATE INDEX IF NOT EXISTS idx_dep_task       ON task_dependencies(task_id);
		CREATE INDEX IF NOT EXISTS idx_dep_depends_on ON task_dependencies(depends_on_id);

		CREATE TABLE IF NOT EXISTS contexts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			key        TEXT    NOT NULL UNIQUE,
			title      TEXT    NOT NULL DEFAULT '',
			content    TEXT    NOT NULL,
			version    INTEGER NOT NULL DEFAULT 1,
			created_by TEXT,
			created_at TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS context_versions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			context_id INTEGER NOT NULL,
			version    INTEGER NOT NULL,
			content    TEXT    NOT NULL,
			created_at TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (context_id) REFERENCES contexts(id) ON DELETE CASCADE
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_ctxver_unique ON context_versions(context_id, version);

		CREATE TABLE IF NOT EXISTS context_tags (
			context_id INTEGER NOT NULL,
			tag        TEXT    NOT NULL,
			FOREIGN KEY (context_id) REFERENCES contexts(id) ON DELETE CASCADE
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_ctxtag_unique ON context_tags(context_id, tag);
		CREATE INDEX IF NOT EXISTS idx_ctxtag_tag ON context_tags(tag);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// nullableString converts an empty string to nil for nullable columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Now returns the current time formatted for SQLite.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}

// exists runs an existence query with a single id parameter.
func (s *Store) exists(ctx context.Context, query string, id any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
