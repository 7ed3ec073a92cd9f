package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler returns an http.Handler serving the registry in the
// OpenMetrics format.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Server exposes /metrics for the watch-mode daemon.
type Server struct {
	srv *http.Server
}

// NewServer listens on addr in the background. Startup failures are logged,
// not fatal: metrics are an observation surface, not a publish dependency.
func NewServer(addr string, reg *prom.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", HTTPHandler(reg))

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Metrics endpoint listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics endpoint failed", slog.Any("error", err))
		}
	}()

	return &Server{srv: srv}
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
