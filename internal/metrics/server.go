package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the rlmon counters and the link-health gauge over HTTP
// for Prometheus scrapes.
type Server struct {
	listen string
	path   string

	httpServer *http.Server
	boundAddr  string
}

// NewServer creates a scrape endpoint on the given listen address. An
// empty path serves on /metrics.
func NewServer(listen, path string) *Server {
	if path == "" {
		path = "/metrics"
	}
	return &Server{listen: listen, path: path}
}

// Start binds the listen address and serves scrapes in the background.
// The bind happens here, not in the goroutine, so an unusable address
// fails daemon startup instead of logging from a detached goroutine.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", s.listen, err)
	}
	s.boundAddr = ln.Addr().String()

	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.Handler())

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	slog.Info("metrics endpoint up", "listen", s.boundAddr, "path", s.path)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics endpoint failed", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, useful when the configured listen
// address has port 0. Empty before Start.
func (s *Server) Addr() string {
	return s.boundAddr
}

// Stop drains in-flight scrapes and shuts the endpoint down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics endpoint shutdown: %w", err)
	}

	slog.Info("metrics endpoint stopped")
	return nil
}
