package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/api/handlers"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/api/response"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check and metrics (no versioning)
	s.router.Get("/health", s.healthCheck)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		heroHandler := handlers.NewHeroHandler(s.heroFacade)
		r.Route("/heroes", func(r chi.Router) {
			r.Get("/", heroHandler.GetHeroes)
			r.Get("/search", heroHandler.SearchHeroes)
		})

		recommendationHandler := handlers.NewRecommendationHandler(s.draftFacade)
		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", recommendationHandler.Recommend)
			r.Post("/tally", recommendationHandler.Tally)
		})

		patternHandler := handlers.NewPatternHandler(s.patternFacade)
		r.Route("/patterns", func(r chi.Router) {
			r.Get("/", patternHandler.GetPatterns)
			r.Get("/status", patternHandler.GetStatus)
			r.Post("/refresh", patternHandler.RefreshPatterns)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	status := s.patternFacade.GetStatus()
	health := map[string]interface{}{
		"status":    "healthy",
		"service":   "dota-draft-companion-api",
		"version":   version.GetVersion(),
		"patterns":  status.Patterns,
		"clients":   s.wsHub.ClientCount(),
		"observers": s.services.Dispatcher.ObserverCount(),
	}
	if client := s.services.OpenDota; client != nil {
		stats := client.GetStats()
		health["opendota"] = map[string]interface{}{
			"breaker":            client.BreakerState(),
			"total_requests":     stats.TotalRequests,
			"failed_requests":    stats.FailedRequests,
			"consecutive_errors": stats.ConsecutiveErrors,
			"last_success":       stats.LastSuccessTime,
		}
	}
	response.JSON(w, http.StatusOK, health)
}
