package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/duelscope/internal/api/handlers"
)

// Server represents the HTTP server for the API and dashboard.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     Config
	logger     *slog.Logger
	svc        handlers.StatsService
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	CORSOrigins    []string
	RateLimit      float64 // requests per second on /api, 0 disables
	RateBurst      int
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           5000,
		CORSOrigins:    []string{"*"},
		RateLimit:      20,
		RateBurst:      40,
		RequestTimeout: 60 * time.Second,
	}
}

// NewServer creates a new server backed by svc.
func NewServer(cfg *Config, svc handlers.StatsService) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		router: chi.NewRouter(),
		config: *cfg,
		logger: logger,
		svc:    svc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.Logger)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout
	s.router.Use(middleware.Timeout(s.config.RequestTimeout))

	// CORS configuration
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Content-Type enforcement for POST requests with a body
	s.router.Use(jsonContentType)
}

// jsonContentType enforces application/json on requests that carry a body.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.ContentLength > 0 {
			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// apiLimiter returns the /api rate limit middleware, or nil when disabled.
func (s *Server) apiLimiter() func(http.Handler) http.Handler {
	if s.config.RateLimit <= 0 {
		return nil
	}
	burst := s.config.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return rateLimit(rate.NewLimiter(rate.Limit(s.config.RateLimit), burst))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured port and serves in a goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.config.Port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.config.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP server starting", "addr", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.config.Port
}
