package session

import (
	"context"
	"encoding/json"
	"errors"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/rusq/mattermost-mcp/internal/fault"
)

// requestID extracts the id of the JSON-RPC message.  It returns a nil id
// if the message can not be decoded or has no id.
func requestID(msg json.RawMessage) mcplib.RequestId {
	var head struct {
		ID mcplib.RequestId `json:"id"`
	}
	_ = json.Unmarshal(msg, &head)
	return head.ID
}

// isRequest reports whether msg is a JSON-RPC request that expects a
// response.
func isRequest(msg json.RawMessage) bool {
	var head struct {
		ID     *json.RawMessage `json:"id"`
		Method string           `json:"method"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return true // parse errors are answered
	}
	return head.ID != nil && head.Method != ""
}

// rpcError converts err into a JSON-RPC error response for the message.
func rpcError(msg json.RawMessage, err error) mcplib.JSONRPCError {
	code := mcplib.INTERNAL_ERROR
	switch {
	case errors.Is(err, fault.ErrSession):
		code = mcplib.INVALID_REQUEST
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = mcplib.REQUEST_INTERRUPTED
	}
	return mcplib.NewJSONRPCError(requestID(msg), code, err.Error(), nil)
}

// parseError is the response to a message that is not valid JSON.
func parseError() mcplib.JSONRPCError {
	return mcplib.NewJSONRPCError(mcplib.NewRequestId(nil), mcplib.PARSE_ERROR, "parse error", nil)
}
