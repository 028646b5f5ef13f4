// Package httpserver wraps the standard library server with the timeouts and
// shutdown behaviour the ledger expects.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/FundPool-Network/funding_ledger/internal/config"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// Server is a lifecycle-managed HTTP server.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// New creates a server for the given handler.
func New(cfg config.ServerConfig, log *logger.Logger, handler http.Handler) *Server {
	if log == nil {
		log = logger.NewDefault("httpserver")
	}
	return &Server{
		log: log,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeoutSecs) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeoutSecs) * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}
