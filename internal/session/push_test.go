package session

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readEvent reads one server-sent event.  Comment lines are skipped.
func readEvent(t *testing.T, br *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := br.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if event != "" || data != "" {
				return event, data
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

// openStream connects to the push endpoint and returns the session
// endpoint.
func openStream(t *testing.T, ctx context.Context, baseURL string) (string, *bufio.Reader) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	br := bufio.NewReader(resp.Body)
	event, data := readEvent(t, br)
	require.Equal(t, "endpoint", event)
	return data, br
}

func TestPushHandler(t *testing.T) {
	m := NewManager(newEchoHandler())
	srv := httptest.NewServer(NewPushHandler(m, WithKeepAlive(0)))
	defer srv.Close()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	endpoint, br := openStream(t, ctx, srv.URL)
	require.True(t, strings.HasPrefix(endpoint, "/message?sessionId="), endpoint)

	id := strings.TrimPrefix(endpoint, "/message?sessionId=")
	s, err := m.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, KindPush, s.Kind())

	resp, err := http.Post(srv.URL+endpoint, "application/json", strings.NewReader(string(rpc(7, "hello"))))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	event, data := readEvent(t, br)
	assert.Equal(t, "message", event)
	var got rpcLine
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.EqualValues(t, 7, got.ID)
	assert.Equal(t, "hello", got.Result)

	// dropping the connection closes the session
	cancel()
	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusClosed, s.Status())

	resp, err = http.Post(srv.URL+endpoint, "application/json", strings.NewReader(string(rpc(8, "hello"))))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPushHandler_twoSessions(t *testing.T) {
	m := NewManager(newEchoHandler())
	srv := httptest.NewServer(NewPushHandler(m, WithKeepAlive(0), WithBasePath("/api")))
	defer srv.Close()

	ctxA, cancelA := context.WithCancel(t.Context())
	defer cancelA()
	epA, _ := openStream(t, ctxA, srv.URL)
	ctxB, cancelB := context.WithCancel(t.Context())
	defer cancelB()
	epB, brB := openStream(t, ctxB, srv.URL)

	assert.NotEqual(t, epA, epB)
	assert.True(t, strings.HasPrefix(epA, "/api/message?sessionId="))
	require.Equal(t, 2, m.Len())

	cancelA()
	require.Eventually(t, func() bool { return m.Len() == 1 }, time.Second, 5*time.Millisecond)

	resp, err := http.Post(srv.URL+strings.TrimPrefix(epB, "/api"), "application/json", strings.NewReader(string(rpc(1, "still-here"))))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	_, data := readEvent(t, brB)
	assert.Contains(t, data, "still-here")
}

func TestPushHandler_unknownSession(t *testing.T) {
	m := NewManager(newEchoHandler())
	srv := httptest.NewServer(NewPushHandler(m))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/message?sessionId=nope", "application/json", strings.NewReader(string(rpc(1, "x"))))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var got mcplib.JSONRPCError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, mcplib.INVALID_REQUEST, got.Error.Code)
	assert.Equal(t, 0, m.Len())
}
