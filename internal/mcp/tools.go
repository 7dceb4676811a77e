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

// In this file: MCP tool definitions and handler implementations.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/mattermost-mcp/internal/fault"
	"github.com/rusq/mattermost-mcp/internal/gateway"
	"github.com/rusq/mattermost-mcp/internal/mattermost"
)

// tool names
const (
	opListChannels   = "list_channels"
	opFetchMessages  = "fetch_messages"
	opSearchMessages = "search_messages"
)

// tools returns all MCP tools that this server exposes.
func (s *Server) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolListChannels(),
		s.toolFetchMessages(),
		s.toolSearchMessages(),
	}
}

func channelsOption() mcplib.ToolOption {
	return mcplib.WithArray(argChannels,
		mcplib.Description("Channels to read, by name, display name or id. If not provided, uses the default channels."),
		mcplib.WithStringItems(),
	)
}

func limitOption(what string) mcplib.ToolOption {
	return mcplib.WithNumber(argLimit,
		mcplib.Description(what),
		mcplib.Min(1),
	)
}

func dateOption(name, what string) mcplib.ToolOption {
	return mcplib.WithString(name,
		mcplib.Description(what+" (YYYY-MM-DD)"),
		mcplib.Pattern(`^\d{4}-\d{2}-\d{2}$`),
	)
}

// ─── list_channels ────────────────────────────────────────────────────────────

func (s *Server) toolListChannels() mcpsrv.ServerTool {
	tool := mcplib.NewTool(opListChannels,
		mcplib.WithDescription("List the channels of the Mattermost server. Returns one JSON object per channel with its id, name, display name, team and message statistics."),
		limitOption("Maximum number of channels to return. If not provided, all channels are returned."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListChannels}
}

// channelSummary is a JSON-serialisable summary of a Mattermost channel.
type channelSummary struct {
	ID              string `json:"id"`
	CreateAt        int64  `json:"create_at"`
	UpdateAt        int64  `json:"update_at"`
	DeleteAt        int64  `json:"delete_at"`
	TeamID          string `json:"team_id"`
	Type            string `json:"type"`
	DisplayName     string `json:"display_name"`
	Name            string `json:"name"`
	Header          string `json:"header"`
	Purpose         string `json:"purpose"`
	LastPostAt      int64  `json:"last_post_at"`
	TotalMsgCount   int64  `json:"total_msg_count"`
	TeamDisplayName string `json:"team_display_name,omitempty"`
	TeamName        string `json:"team_name,omitempty"`
	TeamUpdateAt    int64  `json:"team_update_at,omitempty"`
	Activity        string `json:"activity"`
}

func newChannelSummary(ch mattermost.Channel, now time.Time) channelSummary {
	activity := humanize.Comma(ch.TotalMsgCount) + " messages"
	if ch.LastPostAt > 0 {
		activity += ", last post " + humanize.RelTime(time.UnixMilli(ch.LastPostAt), now, "ago", "from now")
	}
	return channelSummary{
		ID:              ch.ID,
		CreateAt:        ch.CreateAt,
		UpdateAt:        ch.UpdateAt,
		DeleteAt:        ch.DeleteAt,
		TeamID:          ch.TeamID,
		Type:            ch.Type,
		DisplayName:     ch.DisplayName,
		Name:            ch.Name,
		Header:          ch.Header,
		Purpose:         ch.Purpose,
		LastPostAt:      ch.LastPostAt,
		TotalMsgCount:   ch.TotalMsgCount,
		TeamDisplayName: ch.TeamDisplayName,
		TeamName:        ch.TeamName,
		TeamUpdateAt:    ch.TeamUpdateAt,
		Activity:        activity,
	}
}

func (s *Server) handleListChannels(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	r, err := toolArgs(opListChannels, req.GetArguments(), noLimit)
	if err != nil {
		return s.fail(ctx, opListChannels, err), nil
	}
	channels, err := s.q.ListChannels(ctx, s.tgt.Restriction())
	if err != nil {
		return s.fail(ctx, opListChannels, err), nil
	}
	if len(channels) > r.Limit {
		channels = channels[:r.Limit]
	}
	if len(channels) == 0 {
		return resultText("No channels found."), nil
	}

	now := time.Now()
	cc := make([]mcplib.Content, 0, len(channels))
	for _, ch := range channels {
		data, err := json.Marshal(newChannelSummary(ch, now))
		if err != nil {
			return s.fail(ctx, opListChannels, fault.Internal(opListChannels+": serialise", err)), nil
		}
		cc = append(cc, mcplib.NewTextContent(string(data)))
	}
	s.logger.DebugContext(ctx, "mcp: list_channels", "count", len(cc))
	return &mcplib.CallToolResult{Content: cc}, nil
}

// ─── fetch_messages ───────────────────────────────────────────────────────────

func (s *Server) toolFetchMessages() mcpsrv.ServerTool {
	tool := mcplib.NewTool(opFetchMessages,
		mcplib.WithDescription(`Fetch the most recent messages from Mattermost channels.

Returns one text block per channel, in the order the channels were given,
with one "[timestamp] author: message" line per message, most recent first.`),
		channelsOption(),
		limitOption(fmt.Sprintf("Maximum number of messages to fetch per channel (default %d).", s.limit)),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleFetchMessages}
}

func (s *Server) handleFetchMessages(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	r, err := toolArgs(opFetchMessages, req.GetArguments(), s.limit)
	if err != nil {
		return s.fail(ctx, opFetchMessages, err), nil
	}
	s.logger.DebugContext(ctx, "mcp: fetch_messages", "request", r)
	blocks, err := s.fetch(ctx, r)
	if err != nil {
		return s.fail(ctx, opFetchMessages, err), nil
	}
	return resultBlocks(blocks), nil
}

// ─── search_messages ──────────────────────────────────────────────────────────

func (s *Server) toolSearchMessages() mcpsrv.ServerTool {
	tool := mcplib.NewTool(opSearchMessages,
		mcplib.WithDescription(`Search Mattermost messages.

If channels are given (or default channels are configured), each channel is
searched separately and one text block per channel is returned.  Otherwise a
single search across the team is made.`),
		mcplib.WithString(argQuery,
			mcplib.Description("Search terms. Mattermost search syntax is supported, i.e. \"from:alice\" or quoted phrases."),
			mcplib.Required(),
		),
		channelsOption(),
		dateOption(argBefore, "Only messages posted before this date"),
		dateOption(argAfter, "Only messages posted after this date"),
		dateOption(argOn, "Only messages posted on this date"),
		limitOption(fmt.Sprintf("Maximum number of messages to return per channel (default %d).", s.limit)),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSearchMessages}
}

func (s *Server) handleSearchMessages(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	r, err := toolArgs(opSearchMessages, req.GetArguments(), s.limit)
	if err != nil {
		return s.fail(ctx, opSearchMessages, err), nil
	}
	s.logger.DebugContext(ctx, "mcp: search_messages", "request", r)
	blocks, err := s.search(ctx, opSearchMessages, r)
	if err != nil {
		return s.fail(ctx, opSearchMessages, err), nil
	}
	return resultBlocks(blocks), nil
}

// ─── formatting ───────────────────────────────────────────────────────────────

// isoMillis is the ISO 8601 format with milliseconds in UTC.
const isoMillis = "2006-01-02T15:04:05.000Z"

// formatBlock renders the block as text:
//
//	Channel: <label>
//	[2024-01-02T15:04:05.000Z] author: message
func formatBlock(b gateway.Block) string {
	var sb strings.Builder
	if b.Channel != nil {
		sb.WriteString("Channel: ")
	}
	sb.WriteString(b.Label)
	for _, m := range b.Messages {
		fmt.Fprintf(&sb, "\n[%s] %s: %s", m.Time().UTC().Format(isoMillis), m.AuthorDisplayName, m.Body)
	}
	return sb.String()
}
