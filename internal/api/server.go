// Package api serves the web pages and the JSON API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	apihandler "github.com/newthinker/folio/internal/api/handler/api"
	"github.com/newthinker/folio/internal/api/handler/web"
	"github.com/newthinker/folio/internal/api/job"
	"github.com/newthinker/folio/internal/api/middleware"
	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for Folio
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	router     chi.Router
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	TemplatesDir string
	APIKey       string

	// MetricsPath is where Prometheus scrapes; empty disables it.
	MetricsPath string

	// NewsMax caps news feeds when a request sets no limit.
	NewsMax int

	// RequestTimeout bounds a request, narrative batches included.
	RequestTimeout time.Duration
}

// Dependencies are what the handlers run on.
type Dependencies struct {
	App     web.App
	Jobs    *job.Store
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}
	if deps.Jobs == nil {
		deps.Jobs = job.NewStore(100, time.Hour)
	}

	r := chi.NewRouter()
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: cfg.RequestTimeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		router: r,
	}

	if err := s.setupRoutes(cfg, deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) error {
	r := s.router
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(metrics.LoggingMiddleware(s.logger))
	r.Use(metrics.HTTPMiddleware(deps.Metrics))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	webHandler, err := web.NewHandler(deps.App, cfg.TemplatesDir,
		web.WithLogger(s.logger), web.WithNewsMax(cfg.NewsMax))
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}

	// Web UI routes
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Compress(5))
		r.Get("/", webHandler.Dashboard)
		r.Get("/portfolio", webHandler.Portfolio)
		r.Get("/movers", webHandler.Movers)
		r.Get("/narratives", webHandler.Narratives)
		r.Post("/narratives", webHandler.RunNarratives)
		r.Post("/narratives/{ticker}/retry", func(w http.ResponseWriter, req *http.Request) {
			webHandler.RetryNarrative(w, req, chi.URLParam(req, "ticker"))
		})
		r.Get("/news", webHandler.News)
		r.Get("/macro", webHandler.Macro)
	})

	portfolio := apihandler.NewPortfolioHandler(deps.App)
	narratives := apihandler.NewNarrativesHandler(deps.App, deps.Jobs, s.logger)
	newsHandler := apihandler.NewNewsHandler(deps.App, cfg.NewsMax)
	macroHandler := apihandler.NewMacroHandler(deps.App)
	jobs := apihandler.NewJobsHandler(deps.Jobs)

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))

		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.APIKey))

			r.Get("/portfolio", portfolio.Get)
			r.Get("/movers", portfolio.Movers)
			r.Get("/narratives", narratives.List)
			r.Post("/narratives", narratives.Run)
			r.Post("/narratives/{ticker}/retry", func(w http.ResponseWriter, req *http.Request) {
				narratives.Retry(w, req, chi.URLParam(req, "ticker"))
			})
			r.Get("/news", newsHandler.List)
			r.Get("/macro", macroHandler.Get)
			r.Get("/jobs", jobs.List)
			r.Get("/jobs/{id}", func(w http.ResponseWriter, req *http.Request) {
				jobs.Get(w, req, chi.URLParam(req, "id"))
			})
		})
	})

	if cfg.MetricsPath != "" && deps.Metrics != nil {
		r.Handle(cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	return nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
