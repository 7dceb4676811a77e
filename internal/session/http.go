package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rusq/mattermost-mcp/internal/fault"
)

const (
	// DefKeepAlive is the default interval of keep-alive comments on the
	// push stream.
	DefKeepAlive = 30 * time.Second

	maxBodySize = 4 << 20
)

type httpConfig struct {
	keepAlive time.Duration
	basePath  string
}

// HTTPOption configures the HTTP transports.
type HTTPOption func(*httpConfig)

// WithKeepAlive sets the keep-alive interval of the push stream.  Zero
// disables keep-alive comments.
func WithKeepAlive(d time.Duration) HTTPOption {
	return func(c *httpConfig) {
		if d >= 0 {
			c.keepAlive = d
		}
	}
}

// WithBasePath sets the path prefix under which the handler is mounted.  It
// is used to build the endpoint URL sent to push clients.
func WithBasePath(p string) HTTPOption {
	return func(c *httpConfig) {
		c.basePath = p
	}
}

func newHTTPConfig(opts []HTTPOption) httpConfig {
	c := httpConfig{keepAlive: DefKeepAlive}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// readMessage reads the JSON-RPC message from the request body.
func readMessage(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(data) {
		return nil, errors.New("invalid JSON")
	}
	return json.RawMessage(data), nil
}

// statusOf returns the HTTP status for the error.
func statusOf(err error) int {
	switch {
	case errors.Is(err, fault.ErrSession):
		return http.StatusNotFound
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
