package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"directory-enricher/internal/config"
	"directory-enricher/internal/credentials"
	"directory-enricher/internal/directory"
	"directory-enricher/internal/directory/cache"
	"directory-enricher/internal/storage"
)

// DirectoryCache is the cache surface the HTTP layer depends on.
type DirectoryCache interface {
	GetEmployee(ctx context.Context, email string) (*directory.EnrichedEmployeeRecord, error)
	RefreshAll(ctx context.Context) error
	Clear(ctx context.Context)
	Stats() cache.Stats
}

type Handlers struct {
	cache   DirectoryCache
	creds   *credentials.Provider
	store   storage.Store
	config  *config.Config
	version string
}

func New(directoryCache DirectoryCache, creds *credentials.Provider, store storage.Store, cfg *config.Config) *Handlers {
	return &Handlers{
		cache:   directoryCache,
		creds:   creds,
		store:   store,
		config:  cfg,
		version: "1.0.0",
	}
}

// HealthCheck reports process and snapshot-store health. The directory
// service itself is not probed; an unreachable upstream degrades reads
// but does not make this service unhealthy.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Health(r.Context()); err != nil {
			http.Error(w, "Snapshot store unhealthy", http.StatusServiceUnavailable)
			return
		}
	}

	health := map[string]interface{}{
		"status":                "healthy",
		"timestamp":             time.Now(),
		"version":               h.version,
		"credentialsConfigured": h.creds.Configured(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
