// Package postgres persists the cache snapshot in a single-row table
// using pgx. Schema mirrors the sqlite backend.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"directory-enricher/internal/directory"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_snapshot (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`

// Store holds the snapshot as one JSONB document keyed by a fixed row id.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to postgres and prepares the snapshot table.
func NewStore(ctx context.Context, connString string) (*Store, error) {
	if connString == "" {
		return nil, fmt.Errorf("postgres connection string is required")
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Load reads the persisted snapshot, returning (nil, nil) when none exists.
func (s *Store) Load(ctx context.Context) (*directory.CacheSnapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM cache_snapshot WHERE id = 1`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot directory.CacheSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return &snapshot, nil
}

// Save rewrites the snapshot row wholesale.
func (s *Store) Save(ctx context.Context, snapshot *directory.CacheSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO cache_snapshot (id, payload, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Health pings the pool
func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
