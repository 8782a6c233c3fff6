// Package kvstore provides the persisted cache tier: a small key-value store
// backed by SQLite. The store is optional; when it cannot be opened the cache
// manager runs memory-only.
package kvstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store is a SQLite-backed key-value store.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}

	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate kv store: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the value stored under key and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	var value string
	// Read failures count as a miss; the caller refetches
	if err := s.db.QueryRow(`SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value); err != nil {
		return "", false
	}
	return value, true
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}

// Remove deletes the entry under key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv remove: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
