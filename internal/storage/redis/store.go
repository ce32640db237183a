// Package redis persists the cache snapshot as a single JSON value.
// The cache owns TTL semantics, so the key is stored without expiry.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"directory-enricher/internal/directory"
)

const defaultKey = "directory:cache-snapshot"

// Config holds connection settings for the redis snapshot store.
type Config struct {
	Address  string
	Password string
	DB       int
	Key      string
}

// Store keeps the snapshot under one redis key.
type Store struct {
	client *redis.Client
	key    string
}

// NewStore connects to redis and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = defaultKey
	}

	return &Store{client: client, key: key}, nil
}

// Load reads the persisted snapshot, returning (nil, nil) when none exists.
func (s *Store) Load(ctx context.Context) (*directory.CacheSnapshot, error) {
	payload, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot directory.CacheSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return &snapshot, nil
}

// Save rewrites the snapshot key wholesale.
func (s *Store) Save(ctx context.Context, snapshot *directory.CacheSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Health pings redis
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client
func (s *Store) Close() error {
	return s.client.Close()
}
