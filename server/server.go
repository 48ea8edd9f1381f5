// Package server runs the speclist HTTP API behind its middleware stack.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/giygas/speclist/config"
	"github.com/giygas/speclist/data"
	"github.com/giygas/speclist/handlers"
	"github.com/giygas/speclist/health"
	"github.com/giygas/speclist/interfaces"
	"github.com/giygas/speclist/logging"
	"github.com/giygas/speclist/metrics"
	"github.com/giygas/speclist/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	router        chi.Router
	dataContainer *data.DataContainer
	scheduler     interfaces.Scheduler
	rateLimiter   *RateLimiter
	config        *config.Config
}

// NewServer creates a new server instance. scheduler may be nil; it is only
// used to report the next refresh on /health.
func NewServer(cfg *config.Config, dataContainer *data.DataContainer, scheduler interfaces.Scheduler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:        router,
			Addr:           net.JoinHostPort(cfg.Address, cfg.Port),
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
		},
		router:        router,
		dataContainer: dataContainer,
		scheduler:     scheduler,
		rateLimiter:   NewRateLimiter(),
		config:        cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(slog.Default()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json"))
	s.router.Use(metrics.Metrics)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.rateLimiter.Handler)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	validator := validation.NewDataValidator()
	healthChecker := health.NewHealthChecker(s.dataContainer, s.scheduler)
	h := handlers.NewHTTPHandler(s.dataContainer, validator, healthChecker)

	s.router.Get("/species", h.ServeAllSpecies)
	s.router.Get("/species/page/{pageNumber}", h.ServePagedSpecies)
	s.router.Get("/species/code/{code}", h.FindSpeciesByCode)
	s.router.Get("/species/kingdom/{kingdom}", h.FindSpeciesByKingdom)
	s.router.Get("/species/taxon/{taxonNode}", h.FindSpeciesByTaxonNode)
	s.router.Get("/species/search/{name}", h.SearchSpecies)
	s.router.Get("/export/speclist.csv", h.ExportCSV)
	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.dataContainer.SetServerStartTime(time.Now())

	logging.Info("Starting server", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	defer s.rateLimiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
