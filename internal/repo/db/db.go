// Package db owns the shared SQLite handle: opening, schema migration and the
// generic existence check used by the validation engine's unique constraint.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/limaudio/taskman/internal/infra/logging"
)

// ErrDuplicate is returned by repositories when an insert or update violates
// a unique constraint.
var ErrDuplicate = errors.New("duplicate value")

// Config holds configuration for the SQLite store.
type Config struct {
	// Path is the filesystem path to the SQLite database file
	Path string `env:"PATH" default:"var/storage/taskman.db"`
}

// DB wraps the SQLite connection shared by all repositories.
// go-sqlite does not support concurrent writes, so every write goes through
// a single process-wide lock obtained via Lock.
type DB struct {
	SQL *sql.DB

	log       logging.Logger
	writeLock sync.Mutex
}

// Open opens (creating if needed) the database file, applies the schema and
// seeds the built-in roles.
func Open(cfg Config) (*DB, error) {
	log := logging.GetLogger("repo.db").With(
		logging.Group("db", "path", cfg.Path),
	)

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrate(sqlDB); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &DB{
		SQL: sqlDB,
		log: log,
	}, nil
}

// Lock acquires the write lock and returns its release function.
func (d *DB) Lock() func() {
	d.writeLock.Lock()

	return d.writeLock.Unlock
}

// Exists reports whether a row exists in table whose column equals value,
// excluding the row with primary key excludeID when excludeID is non-zero.
// The table and column names come from static constraint declarations, never
// from request input.
func (d *DB) Exists(ctx context.Context, table, column, value string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM " + table + " WHERE " + column + " = ?"
	args := []any{value}

	if excludeID != 0 {
		query += " AND id != ?"
		args = append(args, excludeID)
	}

	query += " LIMIT 1"

	var one int

	err := d.SQL.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}

	return true, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if err := d.SQL.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a SQLite unique-constraint error.
func IsUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}

	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}

// Now returns the canonical timestamp string stored in created_at/updated_at
// columns: RFC 3339 in UTC.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func migrate(sqlDB *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT    NOT NULL,
			email         TEXT    NOT NULL UNIQUE,
			password_hash TEXT    NOT NULL,
			telegram_id   TEXT,
			created_at    TEXT    NOT NULL,
			updated_at    TEXT    NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT    NOT NULL UNIQUE,
			description TEXT    NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id INTEGER NOT NULL,
			role_id INTEGER NOT NULL,
			PRIMARY KEY (user_id, role_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS permissions (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			name    TEXT    NOT NULL UNIQUE,
			user_id INTEGER,
			role_id INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS directions (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT    NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			title            TEXT    NOT NULL,
			description      TEXT    NOT NULL DEFAULT '',
			direction_id     INTEGER,
			due_at           TEXT,
			assigned_user_id INTEGER,
			status           TEXT    NOT NULL,
			urgency          INTEGER NOT NULL DEFAULT 0,
			created_by       INTEGER,
			notified_30      INTEGER NOT NULL DEFAULT 0,
			notified_10      INTEGER NOT NULL DEFAULT 0,
			notified_0       INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT    NOT NULL,
			updated_at       TEXT    NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS task_links (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id INTEGER NOT NULL,
			url     TEXT    NOT NULL,
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS task_files (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id   INTEGER NOT NULL,
			file_name TEXT    NOT NULL,
			file_url  TEXT    NOT NULL,
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id    INTEGER NOT NULL,
			user_id    INTEGER,
			text       TEXT    NOT NULL,
			created_at TEXT    NOT NULL,
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			digest     TEXT    PRIMARY KEY,
			user_id    INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`INSERT OR IGNORE INTO roles(name) VALUES ('admin'), ('sales_manager')`,
	}

	for _, stmt := range statements {
		if _, err := sqlDB.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}
