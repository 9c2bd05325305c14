// Package server exposes the scoring engines over HTTP. The engines stay
// pure; this layer only decodes requests, calls them and encodes results.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/drift"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/health"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/settings"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/tax"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/validation"
)

// Config holds server configuration
type Config struct {
	Port      int
	Log       zerolog.Logger
	Health    *health.Engine
	Drift     *drift.Calculator
	Tax       *tax.Calculator
	Validator *validation.Validator
	Settings  *settings.Repository
	DevMode   bool
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	health    *health.Engine
	drift     *drift.Calculator
	tax       *tax.Calculator
	validator *validation.Validator
	settings  *settings.Repository
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		health:    cfg.Health,
		drift:     cfg.Drift,
		tax:       cfg.Tax,
		validator: cfg.Validator,
		settings:  cfg.Settings,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/api/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/portfolio", func(r chi.Router) {
			r.Post("/score", s.handlePortfolioScore)
			r.Post("/drift", s.handlePortfolioDrift)
		})

		r.Route("/tax", func(r chi.Router) {
			r.Post("/impact", s.handleTaxImpact)
			r.Post("/estimate", s.handleTaxEstimate)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/validate-risk", s.handleValidateRisk)
			r.Post("/validate-holdings", s.handleValidateHoldings)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/targets", s.handleListTargets)
			r.Post("/targets", s.handleSaveTarget)
			r.Delete("/targets/{id}", s.handleDeleteTarget)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router returns the chi router, used by handler tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
