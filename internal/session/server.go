// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

const (
	// DefIdleTimeout is the default time after which an inactive streamable
	// HTTP session is closed.
	DefIdleTimeout = 30 * time.Minute
	// DefShutdownTimeout is the default time given to the sessions to finish
	// on shutdown.
	DefShutdownTimeout = 10 * time.Second
)

// Server is the HTTP server for the push and streamable transports.
type Server struct {
	m               *Manager
	srv             *http.Server
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithIdleTimeout sets the idle timeout of streamable HTTP sessions.  Zero
// disables reaping.
func WithIdleTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d >= 0 {
			s.idleTimeout = d
		}
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// NewServer creates a new server that serves the transport handler h on
// addr.
func NewServer(addr string, m *Manager, h http.Handler, opts ...ServerOption) *Server {
	s := &Server{
		m:               m,
		idleTimeout:     DefIdleTimeout,
		shutdownTimeout: DefShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/healthcheck", s.healthcheck)
	r.Mount("/", h)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler of the server.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.m.Len(),
	})
}

// ListenAndServe binds the address and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.  On cancellation the HTTP server
// and all sessions are shut down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	lg := s.m.lg
	lg.InfoContext(ctx, "server: listening", "addr", ln.Addr().String())

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if s.idleTimeout > 0 {
		eg.Go(func() error {
			s.reap(ctx)
			return nil
		})
	}
	eg.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		// sessions first, so that the open event streams end
		var errs error
		if err := s.m.Shutdown(sctx); err != nil {
			errs = errors.Join(errs, fmt.Errorf("sessions: %w", err))
		}
		if err := s.srv.Shutdown(sctx); err != nil {
			errs = errors.Join(errs, fmt.Errorf("http: %w", err))
		}
		lg.InfoContext(sctx, "server: stopped")
		return errs
	})
	return eg.Wait()
}

// reap closes idle sessions until ctx is done.
func (s *Server) reap(ctx context.Context) {
	every := s.idleTimeout / 2
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.m.ReapIdle(s.idleTimeout); n > 0 {
				s.m.lg.DebugContext(ctx, "server: reaped idle sessions", "count", n)
			}
		}
	}
}
