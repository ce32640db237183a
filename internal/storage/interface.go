// Package storage persists the directory cache snapshot across process
// restarts. The cache is the only writer; the snapshot is read once at
// startup before any concurrent writer exists.
package storage

import (
	"context"

	"directory-enricher/internal/directory"
)

// Store is the persistence bridge for the directory cache.
type Store interface {
	// Load reads the persisted snapshot. Returns (nil, nil) when no
	// snapshot has been written yet.
	Load(ctx context.Context) (*directory.CacheSnapshot, error)

	// Save rewrites the snapshot wholesale.
	Save(ctx context.Context, snapshot *directory.CacheSnapshot) error

	// Health reports whether the backing store is reachable.
	Health(ctx context.Context) error

	Close() error
}

// Config selects and configures a snapshot store backend.
type Config struct {
	// Type is one of "sqlite", "postgres" or "redis"
	Type string

	// SQLitePath is the database file path for the sqlite backend
	SQLitePath string

	// PostgresURL is the connection string for the postgres backend
	PostgresURL string

	// Redis backend settings
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}
