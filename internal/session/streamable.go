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
	"net/http"

	"github.com/go-chi/chi/v5"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/mattermost-mcp/internal/fault"
)

// HeaderSessionID is the header that carries the session id of the
// streamable HTTP transport.
const HeaderSessionID = mcpsrv.HeaderKeySessionID

// streamableHandler implements the streamable HTTP transport.  Every POST
// carries one message and receives the response in the body.  A POST
// without the session header opens a new session.
type streamableHandler struct {
	m   *Manager
	cfg httpConfig
}

// NewStreamableHandler returns the handler of the streamable HTTP transport,
// served at /mcp.
func NewStreamableHandler(m *Manager, opts ...HTTPOption) http.Handler {
	h := &streamableHandler{m: m, cfg: newHTTPConfig(opts)}
	r := chi.NewRouter()
	r.Post("/mcp", h.handlePost)
	r.Delete("/mcp", h.handleDelete)
	r.Get("/mcp", h.handleGet)
	return r
}

func (h *streamableHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	msg, err := readMessage(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, parseError())
		return
	}

	var s *Session
	if id := r.Header.Get(HeaderSessionID); id == "" {
		s, err = h.m.Open(KindHTTP)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, rpcError(msg, err))
			return
		}
		s.Activate()
		h.m.lg.InfoContext(ctx, "http: session started", "session", s.id, "remote", r.RemoteAddr)
	} else {
		s, err = h.m.Lookup(id)
		if err != nil || s.kind != KindHTTP {
			if err == nil {
				err = fault.Session("http: lookup", id)
			}
			writeJSON(w, http.StatusNotFound, rpcError(msg, err))
			return
		}
	}
	w.Header().Set(HeaderSessionID, s.id)

	resp, err := s.Do(ctx, msg)
	if err != nil {
		if ctx.Err() != nil {
			// client has gone away
			return
		}
		writeJSON(w, statusOf(err), rpcError(msg, err))
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *streamableHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(HeaderSessionID)
	if id == "" {
		http.Error(w, "missing "+HeaderSessionID, http.StatusBadRequest)
		return
	}
	s, err := h.m.Lookup(id)
	if err != nil && h.m.WasClosed(id) {
		// already terminated
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil || s.kind != KindHTTP {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	s.Close()
	h.m.lg.InfoContext(r.Context(), "http: session terminated", "session", id)
	w.WriteHeader(http.StatusOK)
}

func (h *streamableHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, DELETE")
	http.Error(w, "server-initiated streams are not supported", http.StatusMethodNotAllowed)
}
