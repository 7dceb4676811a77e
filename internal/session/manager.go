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

// Package session implements the transport session manager.  It keeps the
// map of logical sessions, runs the messages of every session in arrival
// order on a dedicated worker, and provides the three transports: the single
// session byte stream, server push (SSE) and streamable HTTP.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/mattermost-mcp/internal/fault"
)

const (
	// DefRequestTimeout is the default time limit for handling one message.
	DefRequestTimeout = 30 * time.Second
	// DefQueueDepth is the default number of messages that may wait in the
	// queue of one session.
	DefQueueDepth = 64

	notifyDepth = 16
	// maxClosed is the number of recently closed session ids remembered,
	// so that closing them again is a no-op.
	maxClosed = 1024
)

// Handler handles one JSON-RPC message.  It returns nil for notifications.
// *mcpsrv.MCPServer satisfies it.
type Handler interface {
	HandleMessage(ctx context.Context, message json.RawMessage) mcplib.JSONRPCMessage
}

// Registrar makes sessions known to the protocol server, so that it can
// initialise them and deliver notifications.  *mcpsrv.MCPServer satisfies
// it.
type Registrar interface {
	RegisterSession(ctx context.Context, session mcpsrv.ClientSession) error
	UnregisterSession(ctx context.Context, sessionID string)
	WithContext(ctx context.Context, session mcpsrv.ClientSession) context.Context
}

// Manager is the session map.
type Manager struct {
	h       Handler
	reg     Registrar
	lg      *slog.Logger
	timeout time.Duration
	depth   int
	newID   func() string
	now     func() time.Time

	mu         sync.RWMutex
	sessions   map[string]*Session
	closed     map[string]struct{} // recently closed ids
	order      []string            // closed ids, oldest first
	keepClosed int
	closing    bool
	workers    sync.WaitGroup
}

// Option is the functional option for the Manager.
type Option func(*Manager)

// WithLogger sets the logger.  nil logger is ignored.
func WithLogger(lg *slog.Logger) Option {
	return func(m *Manager) {
		if lg != nil {
			m.lg = lg
		}
	}
}

// WithRequestTimeout sets the time limit for handling one message.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithQueueDepth sets the maximum number of queued messages per session.
func WithQueueDepth(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.depth = n
		}
	}
}

// WithIDGenerator sets the session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithClock sets the time source.
func WithClock(fn func() time.Time) Option {
	return func(m *Manager) {
		if fn != nil {
			m.now = fn
		}
	}
}

// WithRegistrar sets the session registrar.  By default, the handler is
// used if it implements [Registrar].
func WithRegistrar(r Registrar) Option {
	return func(m *Manager) {
		m.reg = r
	}
}

// NewManager creates a new session manager that feeds the messages to h.
func NewManager(h Handler, opts ...Option) *Manager {
	m := &Manager{
		h:          h,
		lg:         slog.Default(),
		timeout:    DefRequestTimeout,
		depth:      DefQueueDepth,
		newID:      uuid.NewString,
		now:        time.Now,
		sessions:   make(map[string]*Session),
		closed:     make(map[string]struct{}),
		keepClosed: maxClosed,
	}
	if r, ok := h.(Registrar); ok {
		m.reg = r
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates a new session of the given kind and starts its worker.  The
// stream session has an empty id, and only one may exist.  The stream
// session starts ACTIVE, others start CONNECTING.
func (m *Manager) Open(kind Kind) (*Session, error) {
	const op = "session: open"

	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return nil, fault.Session(op, "")
	}
	var id string
	if kind == KindStream {
		if _, ok := m.sessions[""]; ok {
			m.mu.Unlock()
			return nil, fault.Session(op, "")
		}
	} else {
		for {
			id = m.newID()
			_, dead := m.closed[id]
			if id != "" && m.sessions[id] == nil && !dead {
				break
			}
		}
	}
	s := newSession(m, id, kind)
	if kind == KindStream {
		s.status.Store(int32(StatusActive))
	}
	m.sessions[id] = s
	m.workers.Add(1)
	m.mu.Unlock()

	if m.reg != nil {
		if err := m.reg.RegisterSession(s.ctx, s); err != nil {
			m.lg.Warn("session: register", "session", id, "error", err)
		}
	}
	go func() {
		defer m.workers.Done()
		s.run()
	}()

	m.lg.Debug("session: opened", "session", id, "kind", kind)
	return s, nil
}

// Lookup returns the open session with the given id.  Unknown and closed
// sessions are reported as fault.ErrSession.
func (m *Manager) Lookup(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.Status() == StatusClosed {
		return nil, fault.Session("session: lookup", id)
	}
	return s, nil
}

// Close closes the session with the given id.  Closing a session that was
// recently closed is a no-op.  Unknown ids are reported as fault.ErrSession.
func (m *Manager) Close(id string) error {
	s, err := m.Lookup(id)
	if err != nil {
		if m.WasClosed(id) {
			return nil
		}
		return err
	}
	s.Close()
	return nil
}

// WasClosed reports whether the session with the given id is closed, or is
// among the recently closed ones.
func (m *Manager) WasClosed(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.closed[id]; ok {
		return true
	}
	s, ok := m.sessions[id]
	return ok && s.Status() == StatusClosed
}

// remove is called once by Session.Close.
func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	if m.sessions[s.id] == s {
		delete(m.sessions, s.id)
	}
	if s.id != "" {
		m.bury(s.id)
	}
	m.mu.Unlock()
	if m.reg != nil {
		m.reg.UnregisterSession(context.Background(), s.id)
	}
	m.lg.Debug("session: closed", "session", s.id, "kind", s.kind)
}

// bury remembers the closed id, forgetting the oldest one when the list is
// full.  m.mu must be held.
func (m *Manager) bury(id string) {
	if _, ok := m.closed[id]; ok {
		return
	}
	if len(m.order) >= m.keepClosed {
		delete(m.closed, m.order[0])
		m.order[0] = ""
		m.order = m.order[1:]
	}
	m.closed[id] = struct{}{}
	m.order = append(m.order, id)
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sessions returns a snapshot of sessions, oldest first.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	ss := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		ss = append(ss, s)
	}
	m.mu.RUnlock()
	slices.SortFunc(ss, func(a, b *Session) int {
		return a.created.Compare(b.created)
	})
	return ss
}

// ReapIdle closes streamable HTTP sessions that were not active for longer
// than maxIdle.  Other transports close their sessions when the connection
// drops.  It returns the number of closed sessions.
func (m *Manager) ReapIdle(maxIdle time.Duration) int {
	now := m.now()
	var n int
	for _, s := range m.Sessions() {
		if s.kind != KindHTTP || now.Sub(s.LastActive()) <= maxIdle {
			continue
		}
		m.lg.Info("session: closing idle session", "session", s.id, "idle", now.Sub(s.LastActive()).Round(time.Second))
		s.Close()
		n++
	}
	return n
}

// Shutdown stops accepting new sessions, closes all sessions and waits for
// their workers to finish, or for ctx to be done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()

	ss := m.Sessions()
	for _, s := range ss {
		s.Close()
	}
	m.lg.InfoContext(ctx, "session: shutting down", "sessions", len(ss))

	done := make(chan struct{})
	go func() {
		m.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
