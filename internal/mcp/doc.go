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

// Package mcp implements the Model Context Protocol (MCP) tools and prompts
// of the Mattermost server.  It exposes read-only operations on the
// Mattermost channels that AI agents can call:
//
//   - list_channels   - the channels of the server;
//   - fetch_messages  - recent messages of one or more channels;
//   - search_messages - message search with channel and date filters.
//
// The same operations are available as the "mattermost" prompt for clients
// that only pass text arguments.
//
// All argument encodings (typed JSON arrays and numbers from tool calls,
// comma-separated lists and numeric strings from prompts) are normalised
// into one [Request] before any Mattermost call is made.  Malformed
// arguments are rejected as input errors.
//
// The package does not manage transports, see package session.
package mcp
