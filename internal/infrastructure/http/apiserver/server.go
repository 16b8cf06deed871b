// Package apiserver provides the pure JSON API HTTP server for the
// recipe recommendation pipeline.
package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/savorlabs/nutrimatch/internal/infrastructure/config"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/http/handlers"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/http/middleware"
	"github.com/savorlabs/nutrimatch/internal/infrastructure/monitoring"
	"github.com/savorlabs/nutrimatch/internal/ports/inbound"
	"github.com/savorlabs/nutrimatch/pkg/healthcheck"
)

// Server is the JSON API HTTP server. It owns the router, the handler
// wiring and the underlying http.Server lifecycle.
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	recipes inbound.RecipePipeline
	metrics *monitoring.Metrics
	health  *healthcheck.HealthCheck
}

// New creates a new API server instance
func New(
	cfg *config.Config,
	log *zap.Logger,
	recipes inbound.RecipePipeline,
	metrics *monitoring.Metrics,
	health *healthcheck.HealthCheck,
) *Server {
	server := &Server{
		config:  cfg,
		logger:  log,
		recipes: recipes,
		metrics: metrics,
		health:  health,
	}

	server.router = server.setupRoutes()
	server.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server
}

// setupRoutes configures the JSON API routes
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS())
	r.Use(s.metrics.HTTPMiddleware)

	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(chimiddleware.Compress(5))

	// Health and observability endpoints stay outside the JSON-only
	// content negotiation.
	r.Get("/health", s.health.Handler())
	r.Get("/health/live", s.health.LivenessHandler())
	r.Get("/health/ready", s.health.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JSONOnly())
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *Server) setupAPIV1Routes(r chi.Router) {
	h := handlers.NewPipelineHandlers(s.recipes, s.logger)

	r.Route("/recipes", func(r chi.Router) {
		r.Post("/search", h.Search)
		r.Post("/recommendations", h.Recommend)
	})

	r.Route("/ingredients", func(r chi.Router) {
		r.Post("/substitutions", h.Substitutions)
	})

	r.Get("/stats", h.Stats)
}

// Start starts the API HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting JSON API server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	return s.server.ListenAndServe()
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}
