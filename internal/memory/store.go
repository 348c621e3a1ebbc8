// Package memory is the sqlite-backed key/value recall store that backs
// the memory_store/memory_recall/memory_forget built-in tools.
package memory

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS memory_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Entry is one stored key/value memory, as returned by Recall.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Store persists key/value memory entries at
// <workspace>/memory/memory.db.
type Store struct {
	db *sql.DB
}

// Open creates or opens the sqlite database at path, applying the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Store upserts a key/value entry.
func (s *Store) Store(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO memory_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("memory: store entry: %w", err)
	}
	return nil
}

// Recall returns every entry whose key or value contains query
// (case-insensitive); an empty query returns every entry, most
// recently updated first.
func (s *Store) Recall(query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT key, value, updated_at FROM memory_entries ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("memory: recall: %w", err)
	}
	defer rows.Close()

	needle := strings.ToLower(strings.TrimSpace(query))
	var out []Entry
	for rows.Next() {
		var e Entry
		var updated string
		if err := rows.Scan(&e.Key, &e.Value, &updated); err != nil {
			return nil, fmt.Errorf("memory: scan entry: %w", err)
		}
		e.UpdatedAt, err = time.Parse(time.RFC3339, updated)
		if err != nil {
			return nil, fmt.Errorf("memory: parse updated_at: %w", err)
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Key), needle) && !strings.Contains(strings.ToLower(e.Value), needle) {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

// Forget deletes an entry by key; returns false if no such key existed.
func (s *Store) Forget(key string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM memory_entries WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("memory: forget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("memory: forget: %w", err)
	}
	return n > 0, nil
}

// All returns every stored entry as a key->value map, for
// internal/agent.InjectMemoryContext.
func (s *Store) All() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM memory_entries`)
	if err != nil {
		return nil, fmt.Errorf("memory: list all: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("memory: scan entry: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
