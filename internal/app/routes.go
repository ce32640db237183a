package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"directory-enricher/internal/handlers"
	"directory-enricher/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers, authMiddleware func(http.Handler) http.Handler) {
	// Add logging middleware to all routes
	router.Use(middleware.LoggingMiddleware)

	// Health check (no auth required)
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Lookup endpoint (no auth required)
	router.HandleFunc("/api/employees/{email}", h.GetEmployee).Methods("GET")

	// Admin endpoints (protected when JWT_SECRET is set)
	router.Handle("/api/refresh", authMiddleware(http.HandlerFunc(h.RefreshCache))).Methods("POST")
	router.Handle("/api/cache/clear", authMiddleware(http.HandlerFunc(h.ClearCache))).Methods("POST")
	router.Handle("/api/cache/stats", authMiddleware(http.HandlerFunc(h.GetCacheStats))).Methods("GET")
	router.Handle("/api/credentials", authMiddleware(http.HandlerFunc(h.UpdateCredentials))).Methods("PUT")
}

// RunServer builds the HTTP stack and returns an unstarted server.
func (app *App) RunServer() http.Handler {
	h := handlers.New(app.Cache, app.Credentials, app.Store, app.Config)

	router := mux.NewRouter()
	SetupRoutes(router, h, middleware.AuthMiddleware(app.Config.JWTSecret))
	return router
}
