package handlers

import (
	"net/http"
	"time"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires every route of the service
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Get("/metrics", h.HandleMetrics)

	// Long-lived; kept outside the request timeout
	r.Get("/ws", h.HandleWebSocket)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		// Filtered view
		r.Get("/players", h.GetPlayers)
		r.Get("/leagues", h.GetLeagues)

		// Filters
		r.Get("/filters", h.GetFilters)
		r.Patch("/filters", h.UpdateFilters)

		// Selection
		r.Get("/selection", h.GetSelection)
		r.Get("/selection/persisted", h.GetPersistedSelection)
		r.Post("/selection/toggle", h.ToggleSelection)
		r.Delete("/selection", h.ClearSelection)

		// Derived metrics
		r.Get("/derived", h.ListDerivedMetrics)
		r.Get("/derived/{metric}", h.GetDerivedMetric)

		// Views
		r.Get("/views/heatmap", h.GetHeatmap)
		r.Get("/views/scatter", h.GetScatter)
		r.Get("/views/radar", h.GetRadar)

		// Dataset
		r.Post("/dataset/reload", h.ReloadDataset)
	})

	return r
}
