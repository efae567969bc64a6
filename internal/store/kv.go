// Package store persists trained models, normalization records, and
// simulation runs under a local data directory.
//
// Models and normalization live in a small sqlite key-value table, two
// fixed slots per domain. The two slots are written independently; a
// reader can observe a new model alongside an old normalization between
// the two writes. That window is inherited from the original demo and is
// documented rather than papered over.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound means the slot has never been written. Callers fall
	// back to formula mode on this; it is expected absence, not failure.
	ErrNotFound = errors.New("store: not found")

	// ErrCorrupt means the slot exists but its payload cannot be
	// decoded. Unlike ErrNotFound this is a real fault worth surfacing.
	ErrCorrupt = errors.New("store: corrupt payload")
)

// KV is the sqlite-backed key-value store for model and normalization
// blobs.
type KV struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewKV(path string) *KV {
	return &KV{path: path}
}

func (s *KV) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("store: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS slots (
			key     TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *KV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Put overwrites the slot unconditionally; there is no versioning.
func (s *KV) Put(ctx context.Context, key string, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO slots (key, payload) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload
	`, key, payload)
	return err
}

// Get returns the slot payload, or ErrNotFound when it was never saved.
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Delete removes a slot; deleting a missing slot is not an error.
func (s *KV) Delete(ctx context.Context, key string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key)
	return err
}

func (s *KV) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("store: not initialized")
	}
	return s.db, nil
}
