// Package api provides HTTP router setup.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/newsguardai/newsguard/internal/config"
	"github.com/newsguardai/newsguard/internal/engine"
	"github.com/newsguardai/newsguard/internal/storage"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg *config.Config, eng *engine.Engine, kv storage.KV) http.Handler {
	r := chi.NewRouter()

	handler := NewHandler(eng, kv, cfg)

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (not rate limited)
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(cfg.RateLimit.RequestsPerMinute))

			// Analysis submission
			r.Post("/analyze/text", handler.AnalyzeText)
			r.Post("/analyze/file", handler.AnalyzeFile)

			// Job queue
			r.Get("/jobs", handler.GetQueue)
			r.Get("/jobs/{id}", handler.GetJob)
			r.Delete("/jobs/{id}", handler.CancelJob)

			// History
			r.Get("/history", handler.GetHistory)
			r.Get("/history/export", handler.ExportHistory)
			r.Delete("/history/{id}", handler.DeleteHistoryEntry)
			r.Delete("/history", handler.ClearHistory)

			// Preferences
			r.Get("/prefs", handler.GetPreferences)
			r.Put("/prefs", handler.UpdatePreferences)
		})
	})

	return r
}
