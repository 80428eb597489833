package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dailybrief/internal/config"
	"dailybrief/internal/core"
	"dailybrief/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Generator produces a display-ready result for a request.
type Generator interface {
	Generate(ctx context.Context, req core.GenerationRequest) core.GenerationResult
	Today() string
	ConceptCount() int
}

// DayStore is the day-record collaborator used by the /api/days routes.
type DayStore interface {
	Get(ctx context.Context, userID, date string) (*core.DayRecord, error)
	SaveBrief(ctx context.Context, userID, date string, res core.GenerationResult) (*core.DayRecord, error)
	SaveJournal(ctx context.Context, userID, date, journal string) (*core.DayRecord, error)
	List(ctx context.Context, userID string, limit int) ([]core.DayRecord, error)
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	gen        Generator
	days       DayStore
	metrics    *Metrics
	config     config.Server
	log        zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore mounts the day-record routes backed by st.
func WithStore(st DayStore) Option {
	return func(s *Server) { s.days = st }
}

// WithMetrics replaces the default metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a new HTTP server instance
func New(gen Generator, cfg config.Server, opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		gen:    gen,
		config: cfg,
		log:    logger.Get().With().Str("component", "server").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:     s.config.CORS.AllowedOrigins,
			AllowedMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:     []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials:   false,
			OptionsPassthrough: true,
			MaxAge:             300,
		}))
	}

	// Pre-flight requests never reach a handler.
	s.router.Use(preflight)

	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Every method reaches the handler so the method gate can answer
	// with a display-ready body.
	s.router.HandleFunc("/generate", s.handleGenerate)
	s.router.Route("/api", func(r chi.Router) {
		r.HandleFunc("/generate", s.handleGenerate)

		if s.days != nil {
			r.Route("/days", func(r chi.Router) {
				r.Get("/", s.handleListDays)
				r.Get("/{date}", s.handleGetDay)
				r.Put("/{date}/journal", s.handleSaveJournal)
			})
		}
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.httpServer.Addr).
		Dur("read_timeout", s.config.ReadTimeout).
		Dur("write_timeout", s.config.WriteTimeout).
		Bool("days_api", s.days != nil).
		Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info().Msg("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
