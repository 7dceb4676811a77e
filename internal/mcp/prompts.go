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

// In this file: MCP prompts.  Prompt arguments are always strings, so the
// prompts take the comma-separated channel list and the numeric limit as
// text.

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/mattermost-mcp/internal/gateway"
)

const opPrompt = "mattermost"

// prompts returns all MCP prompts that this server exposes.
func (s *Server) prompts() []mcpsrv.ServerPrompt {
	return []mcpsrv.ServerPrompt{
		s.promptMattermost(),
	}
}

// ─── mattermost ───────────────────────────────────────────────────────────────

func (s *Server) promptMattermost() mcpsrv.ServerPrompt {
	prompt := mcplib.NewPrompt(opPrompt,
		mcplib.WithPromptDescription("Fetch messages from Mattermost channels with optional search functionality"),
		mcplib.WithArgument(argChannels,
			mcplib.ArgumentDescription("Comma-separated list of channel names or ids to fetch messages from"),
		),
		mcplib.WithArgument(argLimit,
			mcplib.ArgumentDescription("Maximum number of messages to fetch per channel"),
		),
		mcplib.WithArgument(argQuery,
			mcplib.ArgumentDescription("Search query to filter messages"),
		),
	)
	return mcpsrv.ServerPrompt{Prompt: prompt, Handler: s.handleMattermostPrompt}
}

func (s *Server) handleMattermostPrompt(ctx context.Context, req mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	r, err := promptArgs(opPrompt, req.Params.Arguments, s.limit)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "mcp: prompt", "name", opPrompt, "request", r)

	var blocks []gateway.Block
	if r.Query != "" {
		blocks, err = s.search(ctx, opPrompt, r)
	} else {
		blocks, err = s.fetch(ctx, r)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "mcp: prompt failed", "name", opPrompt, "error", err)
		return nil, fmt.Errorf("%s: %w", opPrompt, err)
	}

	msgs := make([]mcplib.PromptMessage, 0, len(blocks))
	for _, b := range blocks {
		msgs = append(msgs, mcplib.NewPromptMessage(mcplib.RoleUser, mcplib.NewTextContent(formatBlock(b))))
	}
	return mcplib.NewGetPromptResult("Mattermost messages", msgs), nil
}
