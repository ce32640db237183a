package handlers

import (
	"encoding/json"
	"net/http"
)

// Cache management handlers

// RefreshCache triggers a synchronous full directory refresh. Concurrent
// calls share one upstream sweep.
func (h *Handlers) RefreshCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.RefreshAll(r.Context()); err != nil {
		http.Error(w, "Directory refresh failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.cache.Stats())
}

// ClearCache drops all cached directory data.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.cache.Stats())
}

// GetCacheStats returns cache diagnostics.
func (h *Handlers) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.cache.Stats())
}
