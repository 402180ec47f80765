// Package store provides the durable key-value cache backing DNS
// reconciliation state.
//
// The reconciler persists provider record ids and last-applied IPs here so
// the common "nothing changed" poll completes without any provider calls.
// Storage is backed by a SQLite database; the default path is
// ~/.config/whatismyip/cache.db (or the platform-equivalent returned by
// os.UserConfigDir).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	appDir = "whatismyip"
	dbFile = "cache.db"
)

// Store is the key-value contract the reconciler depends on. Values are
// UTF-8 strings; writes are durable and have no expiry.
type Store interface {
	// Get retrieves the value for key. The second return value reports
	// whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put durably writes value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Close releases storage resources.
	Close() error
}

// SQLiteStore implements Store backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// DefaultPath returns the default database path.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("store: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, dbFile), nil
}

// Open creates or opens a SQLite database at the given path.
// The parent directory is created if it does not exist.
func Open(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrate creates the kv table if it doesn't exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migration failed: %w", err)
	}
	return nil
}

// Get retrieves the value for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: query failed: %w", err)
	}
	return value, true, nil
}

// Put inserts or replaces the value for key.
func (s *SQLiteStore) Put(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("store: write failed: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
