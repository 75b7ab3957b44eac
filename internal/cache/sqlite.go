// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Store backed by a single-table SQLite database, suitable for
// persisting search responses across CLI invocations.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS search_cache (
	key       TEXT PRIMARY KEY,
	value     BLOB NOT NULL,
	stored_at TEXT NOT NULL
);`

// NewSQLite opens (creating if needed) the cache database at path. A ttl of
// zero or less means entries never expire.
func NewSQLite(path string, ttl time.Duration) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached value for key. Stale entries are evicted lazily and
// reported as misses.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var storedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT value, stored_at FROM search_cache WHERE key = ?`, key,
	).Scan(&value, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	if s.ttl > 0 {
		stored, perr := time.Parse(time.RFC3339Nano, storedAt)
		if perr != nil || s.now().Sub(stored) > s.ttl {
			_, _ = s.db.ExecContext(ctx, `DELETE FROM search_cache WHERE key = ?`, key)
			return nil, false, nil
		}
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous entry.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO search_cache (key, value, stored_at) VALUES (?, ?, ?)`,
		key, value, s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
