package storage

import (
	"context"
	"fmt"

	"directory-enricher/internal/storage/postgres"
	"directory-enricher/internal/storage/redis"
	"directory-enricher/internal/storage/sqlite"
)

// NewStore creates the snapshot store selected by the configuration.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "./directory_cache.db"
		}
		return sqlite.NewStore(path)
	case "postgres", "postgresql":
		return postgres.NewStore(ctx, cfg.PostgresURL)
	case "redis":
		return redis.NewStore(ctx, redis.Config{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
	default:
		return nil, fmt.Errorf("unknown snapshot store type %q", cfg.Type)
	}
}
