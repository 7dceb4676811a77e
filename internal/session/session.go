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
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/mattermost-mcp/internal/fault"
)

// Kind is the transport kind of the session.
type Kind uint8

const (
	KindStream Kind = iota // single session byte stream (stdio)
	KindPush               // server push (SSE)
	KindHTTP               // streamable HTTP
)

func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindPush:
		return "push"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of the session.  The only transitions are
// CONNECTING → ACTIVE → CLOSED and CONNECTING → CLOSED.
type Status int32

const (
	StatusConnecting Status = iota
	StatusActive
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "CONNECTING"
	case StatusActive:
		return "ACTIVE"
	case StatusClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ErrBusy is returned when the session queue is full.
var ErrBusy = errors.New("session busy")

// ReplyFunc receives the outcome of a posted message.  resp is nil for
// notifications.  It is called exactly once for every accepted message,
// from the session worker goroutine.
type ReplyFunc func(resp mcplib.JSONRPCMessage, err error)

type job struct {
	ctx   context.Context // may be nil
	msg   json.RawMessage
	reply ReplyFunc
}

// Session is one logical conversation between a client and the server.
// Messages of one session are handled one at a time, in arrival order, by
// the session worker.
type Session struct {
	id      string
	kind    Kind
	created time.Time
	m       *Manager

	status      atomic.Int32
	lastActive  atomic.Int64 // unix nanoseconds
	initialized atomic.Bool
	notify      chan mcplib.JSONRPCNotification

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending []job
	closed  bool
	wake    chan struct{}

	closeOnce sync.Once
	exited    chan struct{} // closed when the worker returns
}

var _ mcpsrv.ClientSession = (*Session)(nil)

func newSession(m *Manager, id string, kind Kind) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	now := m.now()
	s := &Session{
		id:      id,
		kind:    kind,
		created: now,
		m:       m,
		notify:  make(chan mcplib.JSONRPCNotification, notifyDepth),
		ctx:     ctx,
		cancel:  cancel,
		wake:    make(chan struct{}, 1),
		exited:  make(chan struct{}),
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// ID returns the session id.  It is empty for the stream session.
func (s *Session) ID() string { return s.id }

// Kind returns the transport kind.
func (s *Session) Kind() Kind { return s.kind }

// Status returns the current state.
func (s *Session) Status() Status { return Status(s.status.Load()) }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.created }

// LastActive returns the time the last message was handled.
func (s *Session) LastActive() time.Time { return time.Unix(0, s.lastActive.Load()) }

// Done returns a channel that is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Activate moves a CONNECTING session to ACTIVE.  It reports false if the
// session is already closed.
func (s *Session) Activate() bool {
	if s.status.CompareAndSwap(int32(StatusConnecting), int32(StatusActive)) {
		return true
	}
	return s.Status() == StatusActive
}

// Post enqueues the message.  reply is called with the outcome once the
// message has been handled, or with an error if the session closes first.
func (s *Session) Post(msg json.RawMessage, reply ReplyFunc) error {
	return s.enqueue(job{msg: msg, reply: reply})
}

// Do enqueues the message and waits for the response.  Cancelling ctx
// cancels the handling of this message only.
func (s *Session) Do(ctx context.Context, msg json.RawMessage) (mcplib.JSONRPCMessage, error) {
	type result struct {
		resp mcplib.JSONRPCMessage
		err  error
	}
	ch := make(chan result, 1)
	if err := s.enqueue(job{ctx: ctx, msg: msg, reply: func(resp mcplib.JSONRPCMessage, err error) {
		ch <- result{resp, err}
	}}); err != nil {
		return nil, err
	}
	select {
	case r := <-ch:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) enqueue(j job) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fault.Session("session: post", s.id)
	}
	if len(s.pending) >= s.m.depth {
		s.mu.Unlock()
		return ErrBusy
	}
	s.pending = append(s.pending, j)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// next returns the next job, blocking until there is one.  ok is false if
// the session is closed.
func (s *Session) next() (j job, ok bool) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return job{}, false
		}
		if len(s.pending) > 0 {
			j = s.pending[0]
			s.pending[0] = job{}
			s.pending = s.pending[1:]
			s.mu.Unlock()
			return j, true
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-s.ctx.Done():
		}
	}
}

// run is the session worker.
func (s *Session) run() {
	defer close(s.exited)
	for {
		j, ok := s.next()
		if !ok {
			break
		}
		s.exec(j)
	}
	// fail everything that was not handled
	s.mu.Lock()
	rest := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, j := range rest {
		if j.reply != nil {
			j.reply(nil, fault.Session("session: closed", s.id))
		}
	}
}

func (s *Session) exec(j job) {
	parent := j.ctx
	if parent == nil {
		parent = s.ctx
	}
	ctx, cancel := context.WithTimeout(parent, s.m.timeout)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()
	if s.m.reg != nil {
		ctx = s.m.reg.WithContext(ctx, s)
	}

	s.touch()
	resp := s.m.h.HandleMessage(ctx, j.msg)
	s.touch()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		s.m.lg.WarnContext(ctx, "session: request timed out", "session", s.id, "kind", s.kind, "timeout", s.m.timeout)
	}
	if j.reply != nil {
		j.reply(resp, nil)
	}
}

func (s *Session) touch() {
	s.lastActive.Store(s.m.now().UnixNano())
}

// Close closes the session: pending messages are failed, the message being
// handled is cancelled, and the session is removed from the manager.  It is
// safe to call Close any number of times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.status.Store(int32(StatusClosed))
		s.cancel()
		s.m.remove(s)
	})
}

// ─── mcpsrv.ClientSession ─────────────────────────────────────────────────────

// Initialize marks the session as initialised by the client.
func (s *Session) Initialize() { s.initialized.Store(true) }

// Initialized reports if the client has initialised the session.
func (s *Session) Initialized() bool { return s.initialized.Load() }

// NotificationChannel returns the channel for server notifications.  It is
// never closed.
func (s *Session) NotificationChannel() chan<- mcplib.JSONRPCNotification { return s.notify }

// SessionID returns the session id.
func (s *Session) SessionID() string { return s.id }
