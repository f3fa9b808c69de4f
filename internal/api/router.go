package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/duelscope/internal/api/handlers"
)

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	systemHandler := handlers.NewSystemHandler(s.svc)
	statsHandler := handlers.NewStatsHandler(s.svc)
	chartHandler := handlers.NewChartHandler(s.svc)
	dashboardHandler := handlers.NewDashboardHandler(s.svc)

	// Health check endpoint
	s.router.Get("/health", systemHandler.Health)

	// Dashboard and the chart pages it embeds
	s.router.Get("/", dashboardHandler.Index)
	s.router.Route("/charts", func(r chi.Router) {
		r.Get("/winrates", chartHandler.WinrateChart)
		r.Get("/matchups", chartHandler.MatchupChart)
	})

	// JSON API
	s.router.Route("/api", func(r chi.Router) {
		if limiter := s.apiLimiter(); limiter != nil {
			r.Use(limiter)
		}

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", statsHandler.GetStats)
			r.Get("/today", statsHandler.GetToday)
			r.Post("/refresh", statsHandler.Refresh)
		})
		r.Get("/matchups", statsHandler.GetMatchups)
		r.Get("/modes", statsHandler.GetModes)
		r.Get("/system/metrics", systemHandler.GetMetrics)
	})
}
