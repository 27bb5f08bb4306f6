package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaekwang-park/todo-web/internal/middleware"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port      string
	Logger    *slog.Logger
	Auth      *middleware.Auth
	RateLimit middleware.RateLimitConfig
}

// NewServer wraps router in the middleware chain:
// recovery -> request id -> logging -> rate limit -> session -> router.
func NewServer(cfg ServerConfig, router http.Handler) *Server {
	chain := cfg.Auth.Middleware(router)
	chain = middleware.RateLimit(cfg.RateLimit)(chain)
	chain = middleware.Logging(cfg.Logger)(chain)
	chain = middleware.RequestID(chain)
	chain = middleware.Recovery(cfg.Logger)(chain)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Port),
			Handler:           chain,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
