package app

import (
	"context"
	"fmt"

	"directory-enricher/internal/common/logging"
	"directory-enricher/internal/config"
	"directory-enricher/internal/credentials"
	"directory-enricher/internal/directory/cache"
	"directory-enricher/internal/directory/client"
	"directory-enricher/internal/storage"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Store       storage.Store
	Credentials *credentials.Provider
	Client      *client.Client
	Cache       *cache.Cache
	Logger      logging.Logger

	scheduler *scheduler
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	// Initialize components in order of dependency
	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	app.initializeCredentials()
	app.initializeDirectory()

	if err := app.initializeScheduler(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *App) initializeStorage() error {
	storageConfig := storage.Config{
		Type:       app.Config.SnapshotStore,
		SQLitePath: app.Config.SnapshotPath,
	}

	switch app.Config.SnapshotStore {
	case "postgres", "postgresql":
		app.Logger.Info("Snapshot store: PostgreSQL",
			logging.Field{Key: "host", Value: app.Config.PostgresHost},
			logging.Field{Key: "database", Value: app.Config.PostgresDB},
		)
		storageConfig.PostgresURL = app.Config.PostgresURL()
	case "redis":
		app.Logger.Info("Snapshot store: Redis",
			logging.Field{Key: "address", Value: app.Config.RedisAddress})
		storageConfig.RedisAddress = app.Config.RedisAddress
		storageConfig.RedisPassword = app.Config.RedisPassword
		storageConfig.RedisDB = app.Config.RedisDBNumber()
	default:
		app.Logger.Info("Snapshot store: SQLite",
			logging.Field{Key: "path", Value: app.Config.SnapshotPath})
	}

	store, err := storage.NewStore(context.Background(), storageConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	app.Store = store
	return nil
}

func (app *App) initializeCredentials() {
	app.Credentials = credentials.NewProvider(client.Credentials{
		BaseURL:    app.Config.DirectoryBaseURL,
		AuthScheme: app.Config.DirectoryAuthScheme,
		Token:      app.Config.DirectoryToken,
	})

	if !app.Credentials.Configured() {
		app.Logger.Warn("Directory credentials not configured, lookups will return no data until PUT /api/credentials")
	}
}

func (app *App) initializeDirectory() {
	app.Client = client.New(app.Logger)

	app.Cache = cache.New(context.Background(), app.Client, app.Credentials, app.Store, cache.Config{
		TTL:    app.Config.TTL(),
		Policy: cache.RefreshPolicy(app.Config.RefreshPolicy),
	}, app.Logger)

	// Rotated credentials may point at a different tenant; everything
	// cached under the old identity is invalid.
	app.Credentials.OnChange(func() {
		app.Logger.Info("Directory credentials changed, clearing cache")
		app.Cache.Clear(context.Background())
	})
}

// Shutdown stops background work and persists the cache.
func (app *App) Shutdown(ctx context.Context) error {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.Cache != nil {
		app.Cache.Flush(ctx)
	}
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Store != nil {
		app.Store.Close()
	}
}
