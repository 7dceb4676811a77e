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

package mcp

// In this file: MCP server construction and result helpers.

//go:generate mockgen -destination=mock_mcp/mock_mcp.go . Querier,Targeter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/mattermost-mcp/internal/fault"
	"github.com/rusq/mattermost-mcp/internal/gateway"
	"github.com/rusq/mattermost-mcp/internal/mattermost"
)

const (
	serverName    = "mattermost-mcp"
	serverVersion = "1.0.0"

	// DefLimit is the default number of messages per channel.
	DefLimit = 100
)

// Querier runs the read operations.  It is satisfied by *gateway.Gateway.
type Querier interface {
	ListChannels(ctx context.Context, restriction []string) ([]mattermost.Channel, error)
	FetchMessages(ctx context.Context, ref string, limit int) (gateway.Block, error)
	SearchChannel(ctx context.Context, query string, ref string, sc gateway.Scope, limit int) (gateway.Block, error)
	SearchTeam(ctx context.Context, query string, sc gateway.Scope, limit int) (gateway.Block, error)
}

// Targeter decides which channels a call operates on.  It is satisfied by
// *directory.Cache.
type Targeter interface {
	Targets(ctx context.Context, explicit []string) ([]string, error)
	Restriction() []string
}

// Server is the MCP tool and prompt registry.
type Server struct {
	mcp     *mcpsrv.MCPServer
	q       Querier
	tgt     Targeter
	logger  *slog.Logger
	limit   int
	team    string
	version string
}

// Option is the functional option for the Server.
type Option func(*Server)

// WithLogger sets the logger.  nil logger is ignored.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithDefaultLimit sets the number of messages per channel used when the
// caller does not specify the limit.
func WithDefaultLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithTeam sets the configured team reference, it is only reported in the
// server instructions.
func WithTeam(team string) Option {
	return func(s *Server) {
		s.team = team
	}
}

// WithVersion sets the server version reported to the client.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// New creates a new MCP server with all tools and prompts registered.
func New(q Querier, tgt Targeter, opts ...Option) *Server {
	s := &Server{
		q:       q,
		tgt:     tgt,
		logger:  slog.Default(),
		limit:   DefLimit,
		version: serverVersion,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcpsrv.NewMCPServer(
		serverName,
		s.version,
		mcpsrv.WithInstructions(s.instructions()),
		mcpsrv.WithToolCapabilities(false),
		mcpsrv.WithPromptCapabilities(false),
		mcpsrv.WithRecovery(),
	)
	for _, t := range s.tools() {
		s.mcp.AddTool(t.Tool, t.Handler)
	}
	for _, p := range s.prompts() {
		s.mcp.AddPrompt(p.Prompt, p.Handler)
	}
	return s
}

// MCPServer returns the underlying protocol server.  It is the message
// handler for the session transports.
func (s *Server) MCPServer() *mcpsrv.MCPServer {
	return s.mcp
}

func (s *Server) instructions() string {
	var sb strings.Builder
	sb.WriteString(`You are connected to a read-only Mattermost MCP server.

Available tools allow you to:
- List the channels of the Mattermost server
- Read recent messages of one or more channels
- Search messages, optionally within channels and date ranges

Channels can be referred to by name, display name or id.  Dates are in YYYY-MM-DD format.
`)
	if s.team != "" {
		fmt.Fprintf(&sb, "Searches without channels are scoped to the team %q.\n", s.team)
	}
	if r := s.tgt.Restriction(); len(r) > 0 {
		fmt.Fprintf(&sb, "When no channels are given, the following channels are used: %s.\n", strings.Join(r, ", "))
	}
	fmt.Fprintf(&sb, "Default number of messages per channel: %d.\n", s.limit)
	return sb.String()
}

// fetch reads the recent messages of each target channel.
func (s *Server) fetch(ctx context.Context, r Request) ([]gateway.Block, error) {
	targets, err := s.tgt.Targets(ctx, r.Channels)
	if err != nil {
		return nil, err
	}
	blocks := make([]gateway.Block, 0, len(targets))
	for _, ref := range targets {
		b, err := s.q.FetchMessages(ctx, ref, r.Limit)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// search searches each target channel.  If the caller gave no channels and
// there is no restriction, a single team-wide search is made.
func (s *Server) search(ctx context.Context, op string, r Request) ([]gateway.Block, error) {
	if r.Query == "" {
		return nil, fault.Input(op, "%s is required", argQuery)
	}
	sc := gateway.Scope{Before: r.Before, After: r.After, On: r.On}
	if len(r.Channels) == 0 && len(s.tgt.Restriction()) == 0 {
		b, err := s.q.SearchTeam(ctx, r.Query, sc, r.Limit)
		if err != nil {
			return nil, err
		}
		return []gateway.Block{b}, nil
	}
	targets, err := s.tgt.Targets(ctx, r.Channels)
	if err != nil {
		return nil, err
	}
	blocks := make([]gateway.Block, 0, len(targets))
	for _, ref := range targets {
		b, err := s.q.SearchChannel(ctx, r.Query, ref, sc, r.Limit)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// fail converts err into a tool error result.  Internal errors are logged
// and reported without details.
func (s *Server) fail(ctx context.Context, op string, err error) *mcplib.CallToolResult {
	if fault.KindOf(err) == fault.ErrInternal {
		s.logger.ErrorContext(ctx, "mcp: internal error", "op", op, "error", err)
		return resultErr(fmt.Errorf("%s: %w", op, fault.ErrInternal))
	}
	s.logger.WarnContext(ctx, "mcp: call failed", "op", op, "error", err)
	return resultErr(fmt.Errorf("%s: %w", op, err))
}

// resultText is a helper that wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr is a helper that wraps an error in a CallToolResult with IsError=true.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// resultBlocks returns one text content per block.
func resultBlocks(blocks []gateway.Block) *mcplib.CallToolResult {
	if len(blocks) == 0 {
		return resultText("No channels to read.")
	}
	cc := make([]mcplib.Content, 0, len(blocks))
	for _, b := range blocks {
		cc = append(cc, mcplib.NewTextContent(formatBlock(b)))
	}
	return &mcplib.CallToolResult{Content: cc}
}

// noLimit is used for listings that are not limited unless asked.
const noLimit = math.MaxInt32
