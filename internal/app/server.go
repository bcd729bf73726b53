package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/config"
)

// Server wraps the HTTP server with its configuration
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     *slog.Logger
}

// NewServer creates a new configured HTTP server instance
func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Server {
	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: handler,
		// A generation holds the request open until the API answers,
		// which can take well over a minute at high step counts.
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       300 * time.Second,
		WriteTimeout:      300 * time.Second,
	}

	return &Server{
		httpServer: srv,
		config:     cfg,
		logger:     logger,
	}
}

// Start begins listening and serving HTTP requests. It returns nil once
// Shutdown has been called.
func (s *Server) Start() error {
	s.logger.Info("scenesculpt server starting", "addr", "http://localhost"+s.config.ServerPort)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("scenesculpt server shutting down")
	return s.httpServer.Shutdown(ctx)
}
