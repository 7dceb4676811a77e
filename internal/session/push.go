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
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/rusq/mattermost-mcp/internal/fault"
)

// pushHandler implements the server push transport:  the client opens the
// event stream at GET /sse, receives the endpoint with its session id, and
// posts its messages to that endpoint.  Responses are delivered over the
// event stream.
type pushHandler struct {
	m     *Manager
	cfg   httpConfig
	conns sync.Map // session id → *pushConn
}

// pushConn is the outbound side of one event stream.
type pushConn struct {
	s   *Session
	out chan []byte
}

// send queues the message for the event stream.  It gives up if the session
// is closed.
func (c *pushConn) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case c.out <- data:
		return nil
	case <-c.s.Done():
		return fmt.Errorf("session %q is closed", c.s.id)
	}
}

// NewPushHandler returns the handler of the server push transport.
func NewPushHandler(m *Manager, opts ...HTTPOption) http.Handler {
	h := &pushHandler{m: m, cfg: newHTTPConfig(opts)}
	r := chi.NewRouter()
	r.Get("/sse", h.handleStream)
	r.Post("/message", h.handleMessage)
	return r
}

func (h *pushHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming is not supported", http.StatusInternalServerError)
		return
	}
	s, err := h.m.Open(KindPush)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.Close()

	conn := &pushConn{s: s, out: make(chan []byte, notifyDepth)}
	h.conns.Store(s.id, conn)
	defer h.conns.Delete(s.id)

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	bw := bufio.NewWriter(w)
	flush := func() error {
		if err := bw.Flush(); err != nil {
			return err
		}
		fl.Flush()
		return nil
	}

	endpoint := h.cfg.basePath + "/message?sessionId=" + url.QueryEscape(s.id)
	fmt.Fprintf(bw, "event: endpoint\ndata: %s\n\n", endpoint)
	if err := flush(); err != nil {
		return
	}
	s.Activate()
	h.m.lg.InfoContext(ctx, "push: session started", "session", s.id, "remote", r.RemoteAddr)

	var tick <-chan time.Time
	if h.cfg.keepAlive > 0 {
		t := time.NewTicker(h.cfg.keepAlive)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case data := <-conn.out:
			fmt.Fprintf(bw, "event: message\ndata: %s\n\n", data)
		case n := <-s.notify:
			data, err := json.Marshal(n)
			if err != nil {
				h.m.lg.WarnContext(ctx, "push: notification", "session", s.id, "error", err)
				continue
			}
			fmt.Fprintf(bw, "event: message\ndata: %s\n\n", data)
		case <-tick:
			bw.WriteString(": ping\n\n")
		case <-ctx.Done():
			h.m.lg.InfoContext(ctx, "push: client disconnected", "session", s.id)
			return
		case <-s.Done():
			return
		}
		if err := flush(); err != nil {
			h.m.lg.WarnContext(ctx, "push: write", "session", s.id, "error", err)
			return
		}
	}
}

func (h *pushHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("sessionId")
	s, err := h.m.Lookup(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, rpcError(nil, err))
		return
	}
	v, ok := h.conns.Load(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, rpcError(nil, fault.Session("push: message", id)))
		return
	}
	conn := v.(*pushConn)

	msg, err := readMessage(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, parseError())
		return
	}
	err = s.Post(msg, func(resp mcplib.JSONRPCMessage, err error) {
		if err != nil && resp == nil && isRequest(msg) {
			resp = rpcError(msg, err)
		}
		if resp == nil {
			return
		}
		if err := conn.send(resp); err != nil {
			h.m.lg.Debug("push: response dropped", "session", id, "error", err)
		}
	})
	if err != nil {
		writeJSON(w, statusOf(err), rpcError(msg, err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
