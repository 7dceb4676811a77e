package session

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doHTTP(t *testing.T, method, url, id, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if id != "" {
		req.Header.Set(HeaderSessionID, id)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStreamableHandler(t *testing.T) {
	h := newEchoHandler()
	m := NewManager(h)
	srv := httptest.NewServer(NewStreamableHandler(m))
	defer srv.Close()
	url := srv.URL + "/mcp"

	// no header: a new session
	resp := doHTTP(t, http.MethodPost, url, "", string(rpc(1, "initialize")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := resp.Header.Get(HeaderSessionID)
	require.NotEmpty(t, id)
	var got rpcLine
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "initialize", got.Result)

	s, err := m.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, KindHTTP, s.Kind())

	// known id: routed to the same session
	resp = doHTTP(t, http.MethodPost, url, id, string(rpc(2, "tools/list")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, resp.Header.Get(HeaderSessionID))
	assert.Equal(t, 1, m.Len())

	// notification
	resp = doHTTP(t, http.MethodPost, url, id, `{"jsonrpc":"2.0","method":"notify"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// a second client gets a different session
	resp = doHTTP(t, http.MethodPost, url, "", string(rpc(1, "initialize")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, id, resp.Header.Get(HeaderSessionID))
	assert.Equal(t, 2, m.Len())

	assert.Equal(t, []string{"initialize", "tools/list", "notify", "initialize"}, h.methods())
}

func TestStreamableHandler_delete(t *testing.T) {
	m := NewManager(newEchoHandler())
	srv := httptest.NewServer(NewStreamableHandler(m))
	defer srv.Close()
	url := srv.URL + "/mcp"

	resp := doHTTP(t, http.MethodPost, url, "", string(rpc(1, "initialize")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := resp.Header.Get(HeaderSessionID)

	resp = doHTTP(t, http.MethodDelete, url, id, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, m.Len())

	resp = doHTTP(t, http.MethodPost, url, id, string(rpc(2, "tools/list")))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var e mcplib.JSONRPCError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, mcplib.INVALID_REQUEST, e.Error.Code)
	assert.Equal(t, 0, m.Len())

	// terminating again is a no-op
	resp = doHTTP(t, http.MethodDelete, url, id, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, m.Len())

	resp = doHTTP(t, http.MethodPost, url, id, string(rpc(3, "tools/list")))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamableHandler_errors(t *testing.T) {
	m := NewManager(newEchoHandler())
	srv := httptest.NewServer(NewStreamableHandler(m))
	defer srv.Close()
	url := srv.URL + "/mcp"

	t.Run("unknown session", func(t *testing.T) {
		resp := doHTTP(t, http.MethodPost, url, "unknown", string(rpc(1, "tools/list")))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, 0, m.Len())
	})
	t.Run("invalid json", func(t *testing.T) {
		resp := doHTTP(t, http.MethodPost, url, "", "{")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var e mcplib.JSONRPCError
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
		assert.Equal(t, mcplib.PARSE_ERROR, e.Error.Code)
		assert.Equal(t, 0, m.Len())
	})
	t.Run("get is not allowed", func(t *testing.T) {
		resp := doHTTP(t, http.MethodGet, url, "", "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
	})
	t.Run("delete unknown session", func(t *testing.T) {
		resp := doHTTP(t, http.MethodDelete, url, "unknown", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
	t.Run("delete without id", func(t *testing.T) {
		resp := doHTTP(t, http.MethodDelete, url, "", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
