package mcp

// In this file: normalisation of the tool and prompt arguments into one
// request structure.

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rusq/mattermost-mcp/internal/fault"
	"github.com/rusq/mattermost-mcp/internal/validate"
)

// Request is the normalised tool call.
type Request struct {
	// Channels are channel references (names, display names or ids), nil if
	// the caller did not supply any.
	Channels []string `json:"channels"`
	Query    string   `json:"query"`
	Limit    int      `json:"limit" validate:"gt=0"`
	Before   string   `json:"before" validate:"omitempty,datetime=2006-01-02"`
	After    string   `json:"after" validate:"omitempty,datetime=2006-01-02"`
	On       string   `json:"on" validate:"omitempty,datetime=2006-01-02"`
}

// argument names
const (
	argChannels = "channels"
	argLimit    = "limit"
	argQuery    = "query"
	argBefore   = "before"
	argAfter    = "after"
	argOn       = "on"
)

// toolArgs normalises the typed JSON arguments of a tool call.  Channels
// may be an array of strings or a comma-separated string, the limit may be
// a number or a numeric string.
func toolArgs(op string, args map[string]any, defLimit int) (Request, error) {
	var (
		r   = Request{Limit: defLimit}
		err error
	)
	if r.Channels, err = channelsArg(op, args[argChannels]); err != nil {
		return Request{}, err
	}
	if v, ok := args[argLimit]; ok && v != nil {
		if r.Limit, err = limitArg(op, v); err != nil {
			return Request{}, err
		}
	}
	for _, a := range []struct {
		name string
		dst  *string
	}{
		{argQuery, &r.Query},
		{argBefore, &r.Before},
		{argAfter, &r.After},
		{argOn, &r.On},
	} {
		if *a.dst, err = stringArg(op, a.name, args[a.name]); err != nil {
			return Request{}, err
		}
	}
	return r, r.validate(op)
}

// promptArgs normalises the prompt arguments, which are always strings.
func promptArgs(op string, args map[string]string, defLimit int) (Request, error) {
	r := Request{
		Channels: splitList(args[argChannels]),
		Query:    strings.TrimSpace(args[argQuery]),
		Limit:    defLimit,
		Before:   strings.TrimSpace(args[argBefore]),
		After:    strings.TrimSpace(args[argAfter]),
		On:       strings.TrimSpace(args[argOn]),
	}
	if s := strings.TrimSpace(args[argLimit]); s != "" {
		var err error
		if r.Limit, err = limitArg(op, s); err != nil {
			return Request{}, err
		}
	}
	return r, r.validate(op)
}

func (r Request) validate(op string) error {
	if err := validate.Struct(r); err != nil {
		return fault.Input(op, "%w", err)
	}
	return nil
}

func channelsArg(op string, v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return splitList(val), nil
	case []string:
		return compact(val), nil
	case []any:
		ss := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fault.Input(op, "%s[%d] must be a string, got %T", argChannels, i, item)
			}
			ss = append(ss, s)
		}
		return compact(ss), nil
	default:
		return nil, fault.Input(op, "%s must be an array of strings, got %T", argChannels, v)
	}
}

// maxLimit is the largest accepted limit, whatever the encoding.
const maxLimit = math.MaxInt32

func limitArg(op string, v any) (int, error) {
	var n int64
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, fault.Input(op, "%s must be an integer, got %v", argLimit, val)
		}
		if math.Abs(val) > maxLimit {
			return 0, fault.Input(op, "%s must not exceed %d, got %v", argLimit, maxLimit, val)
		}
		n = int64(val)
	case int:
		n = int64(val)
	case int64:
		n = val
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, fault.Input(op, "%s must be an integer, got %q", argLimit, val)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fault.Input(op, "%s must be an integer, got %q", argLimit, val)
		}
		n = i
	default:
		return 0, fault.Input(op, "%s must be a number, got %T", argLimit, v)
	}
	if n <= 0 {
		return 0, fault.Input(op, "%s must be a positive integer, got %d", argLimit, n)
	}
	if n > maxLimit {
		return 0, fault.Input(op, "%s must not exceed %d, got %d", argLimit, maxLimit, n)
	}
	return int(n), nil
}

func stringArg(op string, name string, v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(val), nil
	default:
		return "", fault.Input(op, "%s must be a string, got %T", name, v)
	}
}

// splitList splits the comma-separated list.  Empty string gives nil.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return compact(strings.Split(s, ","))
}

// compact trims the elements and drops the empty ones.  It returns nil if
// nothing is left.
func compact(ss []string) []string {
	var ret []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

// String implements fmt.Stringer for logging.
func (r Request) String() string {
	return fmt.Sprintf("channels=%v query=%q limit=%d before=%q after=%q on=%q", r.Channels, r.Query, r.Limit, r.Before, r.After, r.On)
}
