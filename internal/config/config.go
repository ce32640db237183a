// Package config provides configuration management for the directory
// enricher. It handles loading configuration from environment variables
// with sensible defaults and validates the configuration to ensure the
// application starts safely.
//
// The package supports multiple snapshot store backends (SQLite,
// PostgreSQL and Redis), optional JWT authentication for the admin
// endpoints, and a cron schedule for background full refreshes.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//
// Directory Service:
//   - DIRECTORY_BASE_URL: Base URL of the HR directory service
//   - DIRECTORY_TOKEN: Bearer token for the directory service
//   - DIRECTORY_AUTH_SCHEME: Authorization scheme (default: Bearer)
//
// Cache Behavior:
//   - CACHE_TTL: Entry and named-list freshness window (default: 24h)
//   - REFRESH_POLICY: "eager" or "lazy" (default: eager)
//   - REFRESH_SCHEDULE: Cron expression for background full refreshes
//     (empty disables the scheduler)
//
// Snapshot Store:
//   - SNAPSHOT_STORE: Store type - "sqlite", "postgres" or "redis"
//     (default: sqlite)
//   - SNAPSHOT_PATH: SQLite database file path (default: ./directory_cache.db)
//   - POSTGRES_HOST: PostgreSQL host (required if using PostgreSQL)
//   - POSTGRES_PORT: PostgreSQL port (default: 5432)
//   - POSTGRES_DB: PostgreSQL database name (required if using PostgreSQL)
//   - POSTGRES_USER: PostgreSQL username (required if using PostgreSQL)
//   - POSTGRES_PASSWORD: PostgreSQL password
//   - POSTGRES_SSL_MODE: PostgreSQL SSL mode (default: disable)
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//
// Security Configuration:
//   - JWT_SECRET: JWT signing secret for the admin endpoints. When empty
//     the admin endpoints are unauthenticated (minimum 32 characters
//     when set)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the directory enricher.
// All string fields correspond to environment variables that can be set
// to override the default values.
//
// The configuration is loaded using the Load() function and should be
// validated using the Validate() method before use.
type Config struct {
	// Application settings
	Port     string // Server port number
	LogLevel string // Logging level (debug, info, warn, error)

	// Directory service settings
	DirectoryBaseURL    string // Base URL of the HR directory service
	DirectoryToken      string // Bearer token for the directory service
	DirectoryAuthScheme string // Authorization scheme prefix

	// Cache behavior
	CacheTTL        string // Freshness window, e.g. "24h"
	RefreshPolicy   string // "eager" or "lazy"
	RefreshSchedule string // Cron expression, empty disables scheduling

	// Snapshot store configuration
	SnapshotStore string // Store type: "sqlite", "postgres" or "redis"
	SnapshotPath  string // Path to SQLite snapshot file

	PostgresHost     string // PostgreSQL host address
	PostgresPort     string // PostgreSQL port number
	PostgresDB       string // PostgreSQL database name
	PostgresUser     string // PostgreSQL username
	PostgresPassword string // PostgreSQL password
	PostgresSSLMode  string // PostgreSQL SSL mode (disable, require, etc.)

	RedisAddress  string // Redis server address (host:port)
	RedisPassword string // Redis authentication password
	RedisDB       string // Redis database number (0-15)

	// JWT authentication configuration
	JWTSecret string // Secret key for admin endpoint tokens (optional)
}

// Load creates a new Config instance with values loaded from environment
// variables. If an environment variable is not set, the corresponding
// default value is used.
//
// This function does not validate the configuration - call Validate() on
// the returned Config to ensure all required values are properly set.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Directory service
		DirectoryBaseURL:    getEnv("DIRECTORY_BASE_URL", ""),
		DirectoryToken:      getEnv("DIRECTORY_TOKEN", ""),
		DirectoryAuthScheme: getEnv("DIRECTORY_AUTH_SCHEME", "Bearer"),

		// Cache behavior
		CacheTTL:        getEnv("CACHE_TTL", "24h"),
		RefreshPolicy:   getEnv("REFRESH_POLICY", "eager"),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", ""),

		// Snapshot store
		SnapshotStore: getEnv("SNAPSHOT_STORE", "sqlite"),
		SnapshotPath:  getEnv("SNAPSHOT_PATH", "./directory_cache.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "directory_enricher"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// JWT configuration
		JWTSecret: getEnv("JWT_SECRET", ""),
	}
}

// getEnv retrieves an environment variable value or returns a default
// value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate performs comprehensive validation on the configuration to
// ensure all required fields are present and all values are valid.
//
// This method checks:
//   - Field format validation (ports, durations, policy names)
//   - Cross-field dependencies (PostgreSQL configuration requirements)
//   - Security requirements (JWT secret length when provided)
//
// The application should call this method after loading configuration
// and before starting to ensure safe operation.
func (c *Config) Validate() error {
	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	// Validate cache TTL
	if ttl, err := time.ParseDuration(c.CacheTTL); err != nil || ttl <= 0 {
		return fmt.Errorf("CACHE_TTL must be a positive duration (e.g., '24h', '30m')")
	}

	// Validate refresh policy
	switch c.RefreshPolicy {
	case "eager", "lazy":
		// Valid policies
	default:
		return fmt.Errorf("REFRESH_POLICY must be 'eager' or 'lazy'")
	}

	// Validate snapshot store type
	switch c.SnapshotStore {
	case "sqlite", "postgres", "postgresql", "redis":
		// Valid store types
	default:
		return fmt.Errorf("SNAPSHOT_STORE must be 'sqlite', 'postgres' or 'redis'")
	}

	// Validate PostgreSQL config if using PostgreSQL
	if c.SnapshotStore == "postgres" || c.SnapshotStore == "postgresql" {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if port, err := strconv.Atoi(c.PostgresPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	}

	// Validate Redis config if using Redis
	if c.SnapshotStore == "redis" {
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required when using Redis")
		}
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
	}

	// Validate JWT secret length when admin auth is enabled
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long for security")
	}

	return nil
}

// TTL returns the parsed cache TTL. Call Validate first; an invalid
// duration falls back to 24 hours.
func (c *Config) TTL() time.Duration {
	ttl, err := time.ParseDuration(c.CacheTTL)
	if err != nil || ttl <= 0 {
		return 24 * time.Hour
	}
	return ttl
}

// PostgresURL builds a connection string from the individual PostgreSQL
// settings.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort,
		c.PostgresDB, c.PostgresSSLMode)
}

// RedisDBNumber returns the parsed Redis database number. Call Validate
// first; an invalid value falls back to 0.
func (c *Config) RedisDBNumber() int {
	db, err := strconv.Atoi(c.RedisDB)
	if err != nil {
		return 0
	}
	return db
}
