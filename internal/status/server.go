package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionInfo is the point-in-time session state reported by /status.
type SessionInfo struct {
	Model string `json:"model"`
	Turns int    `json:"turns"`
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Model         string  `json:"model"`
	Turns         int     `json:"turns"`
}

// Server serves health, status, and metrics over a local HTTP listener.
type Server struct {
	addr      string
	logger    *slog.Logger
	metrics   *Metrics
	sessionFn func() SessionInfo
	startedAt time.Time

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a Server. sessionFn supplies the live session state
// for /status; it must be safe to call from the serving goroutine.
func NewServer(addr string, metrics *Metrics, sessionFn func() SessionInfo, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:      addr,
		logger:    logger.With("component", "status"),
		metrics:   metrics,
		sessionFn: sessionFn,
	}
}

// buildRouter constructs the chi mux with all routes wired.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth())
	r.Get("/status", s.handleStatus())
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

// handleHealth returns an http.HandlerFunc for GET /healthz.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(s.startedAt).Seconds(),
		}
		if s.sessionFn != nil {
			info := s.sessionFn()
			resp.Model = info.Model
			resp.Turns = info.Turns
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Start binds the listener and begins serving in the background.
// Binding errors are returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.startedAt = time.Now()
	s.httpServer = &http.Server{
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server failed", "error", err)
		}
	}()

	s.logger.Info("status server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listener address. Valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
