// Package server exposes the keep-alive, health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TokenScout/internal/observability"
)

// UserCounter reports the size of the user registry
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthStatus is the /health response body
type HealthStatus struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	Users     *int      `json:"users,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Server serves the HTTP endpoints next to the bot
type Server struct {
	addr    string
	started time.Time
	users   UserCounter
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// New creates a server listening on port. users and metrics may be nil.
func New(port string, users UserCounter, metrics *observability.Metrics) *Server {
	if port == "" {
		port = "8080"
	}
	return &Server{
		addr:    ":" + port,
		started: time.Now(),
		users:   users,
		metrics: metrics,
		logger:  log.With().Str("component", "server").Logger(),
	}
}

// Handler returns the routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.rootHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.logger.Info().Str("addr", s.addr).Msg("Bot server running")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Bot is running.")
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}

	if s.users != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		n, err := s.users.Count(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("User count failed")
			status.Status = "degraded"
		} else {
			status.Users = &n
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write health response")
	}
}
