package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonathan/jobscout/internal/insights"
	"github.com/jonathan/jobscout/internal/server/middleware"
	"github.com/jonathan/jobscout/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	service     *insights.Service
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	authHandler *AuthHandler
	logger      *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port int
}

// Deps are the collaborators a Server routes to. Limiter may be nil to
// disable rate limiting.
type Deps struct {
	Service *insights.Service
	JWT     *JWTService
	Limiter *ratelimit.Limiter
	Logger  *slog.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Service == nil {
		return nil, errors.New("server: insights service is required")
	}
	if deps.JWT == nil {
		return nil, errors.New("server: JWT service is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service:     deps.Service,
		jwtService:  deps.JWT,
		rateLimiter: deps.Limiter,
		logger:      logger,
	}
	s.authHandler = NewAuthHandler(s, deps.JWT)

	requireAuth := middleware.AuthMiddleware(deps.JWT.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/refresh", s.authHandler.Refresh)

	mux.Handle("POST /api/summaries", protected(s.handleSummarize))
	mux.Handle("POST /api/summaries/stream", protected(s.handleSummarizeStream))
	mux.Handle("GET /api/summaries/{listingId}", protected(s.handleGetSummary))
	mux.Handle("POST /api/comparisons", protected(s.handleCompare))
	mux.Handle("POST /api/comparisons/stream", protected(s.handleCompareStream))

	var h http.Handler = mux
	if s.rateLimiter != nil {
		h = s.rateLimiter.Middleware(logger)(h)
	}
	h = withCORS(h)
	h = middleware.RequestLogger(logger)(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Streamed generations can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
