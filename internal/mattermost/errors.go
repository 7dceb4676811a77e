package mattermost

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// APIError is the error response of the Mattermost API.
type APIError struct {
	// ID is the server error id, i.e. "api.context.session_expired.app_error".
	ID         string `json:"id"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
	StatusCode int    `json:"status_code"`
}

func (e *APIError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("mattermost: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("mattermost: %s (%d): %s", e.ID, e.StatusCode, e.Message)
}

// newAPIError decodes the error body.  Bodies that are not JSON (i.e. from a
// reverse proxy) are carried in the Message.
func newAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || (apiErr.ID == "" && apiErr.Message == "") {
		apiErr = APIError{Message: truncate(string(body), 256)}
	}
	apiErr.StatusCode = status
	return &apiErr
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == code
}

// truncate cuts s to at most n bytes, on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
