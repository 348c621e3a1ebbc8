// Package gateway is the kernel's HTTP surface: a health endpoint
// backed by the daemon's registry and a Prometheus metrics endpoint,
// grounded on the teacher's internal/gateway/http_server.go.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haasonsaas/nexuscore/pkg/models"
)

// HealthSource reports the current health snapshot, satisfied by
// *daemon.Registry without this package importing internal/daemon.
type HealthSource interface {
	Snapshot() models.DaemonState
}

// Server is the kernel's minimal HTTP gateway.
type Server struct {
	Addr   string
	Health HealthSource
	Logger *slog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer builds a Server listening on host:port.
func NewServer(host string, port int, health HealthSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Addr:   fmt.Sprintf("%s:%d", host, port),
		Health: health,
		Logger: logger.With("component", "gateway"),
	}
}

// Start binds the listener and serves in the background until Stop ends
// it; ctx is not consulted here (Run stops the server when its ctx is
// cancelled). Matches the teacher's listen-then-goroutine-Serve shape
// so a Start error (bad address, port in use) surfaces synchronously.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealthz)

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", s.Addr, err)
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.httpServer = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("http server error", "error", err)
		}
	}()

	s.Logger.Info("starting http server", "addr", s.Addr)
	return nil
}

// Stop gracefully shuts down the HTTP server under ctx; a nil ctx is
// replaced by one bounded to 5 seconds.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx := ctx
	var cancel context.CancelFunc
	if shutdownCtx == nil {
		shutdownCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	err := s.httpServer.Shutdown(shutdownCtx)
	s.httpServer = nil
	s.listener = nil
	return err
}

// Run implements daemon.Component: start, block until ctx is cancelled,
// then shut down — the shape the supervisor expects from every managed
// component.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.Health == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
		return
	}

	data, err := json.Marshal(s.Health.Snapshot())
	if err != nil {
		s.Logger.Error("healthz marshal failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.Logger.Debug("healthz write failed", "error", err)
	}
}
