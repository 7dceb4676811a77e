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

// Package mattermost is a minimal read-only client for the Mattermost REST
// API v4.  It covers the calls needed to mirror the team and channel
// directory, read channel history and search posts.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rusq/mattermost-mcp/internal/network"
)

const (
	apiPrefix = "/api/v4"
	// maxResponseSize limits the size of the response body that is read.
	maxResponseSize = 32 << 20
	// DefTimeout is the default timeout of the HTTP client.
	DefTimeout = 30 * time.Second
)

// ErrNoEndpoint is returned by New if the endpoint is empty.
var ErrNoEndpoint = errors.New("mattermost: endpoint is required")

// Client is the Mattermost API client.  It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
	limiter *rate.Limiter
	lg      *slog.Logger
}

// Option is a functional option for the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLimits sets the request rate limits.
func WithLimits(l network.Limits) Option {
	return func(c *Client) {
		c.limiter = network.NewLimiter(l)
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) {
		if lg != nil {
			c.lg = lg
		}
	}
}

// New creates a new client for the server at endpoint, authenticating with
// the personal access token or bot token.  The endpoint may include the
// "/api/v4" suffix.
func New(endpoint string, token string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("mattermost: invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("mattermost: invalid endpoint %q: unsupported scheme", endpoint)
	}
	base := strings.TrimRight(endpoint, "/")
	base = strings.TrimSuffix(base, apiPrefix)

	c := &Client{
		baseURL: base,
		token:   token,
		hc:      &http.Client{Timeout: DefTimeout},
		limiter: network.NewLimiter(network.DefLimits),
		lg:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetTeams returns one page of teams visible to the token owner.
func (c *Client) GetTeams(ctx context.Context, page, perPage int) ([]Team, error) {
	var teams []Team
	if err := c.get(ctx, "/teams", pageQuery(page, perPage), &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetChannels returns one page of the system-wide channel listing.  The
// records carry the team name fields.
func (c *Client) GetChannels(ctx context.Context, page, perPage int) ([]Channel, error) {
	q := pageQuery(page, perPage)
	q.Set("include_deleted", "false")
	var channels []Channel
	if err := c.get(ctx, "/channels", q, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// GetChannelsForTeam returns one page of the public channels of the team.
func (c *Client) GetChannelsForTeam(ctx context.Context, teamID string, page, perPage int) ([]Channel, error) {
	if teamID == "" {
		return nil, errors.New("mattermost: empty team id")
	}
	var channels []Channel
	if err := c.get(ctx, "/teams/"+url.PathEscape(teamID)+"/channels", pageQuery(page, perPage), &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// GetPostsForChannel returns one page of the channel history, most recent
// first.
func (c *Client) GetPostsForChannel(ctx context.Context, channelID string, page, perPage int) (*PostList, error) {
	if channelID == "" {
		return nil, errors.New("mattermost: empty channel id")
	}
	var pl PostList
	path := "/channels/" + url.PathEscape(channelID) + "/posts"
	if err := c.get(ctx, path, pageQuery(page, perPage), &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

// SearchPosts searches posts within the team teamID.  If teamID is empty,
// the search is performed across all teams of the token owner.
func (c *Client) SearchPosts(ctx context.Context, teamID string, params SearchParams) (*PostList, error) {
	path := "/posts/search"
	if teamID != "" {
		path = "/teams/" + url.PathEscape(teamID) + "/posts/search"
	}
	var pl PostList
	if err := c.do(ctx, http.MethodPost, path, nil, params, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

// GetUsersByIDs returns the users with the given ids.  Unknown ids are
// silently omitted by the server.
func (c *Client) GetUsersByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []User
	if err := c.do(ctx, http.MethodPost, "/users/ids", nil, ids, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, v)
}

// do performs the API call and decodes the JSON response into v.  Non-2xx
// responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any, v any) error {
	if err := network.Wait(ctx, c.limiter); err != nil {
		return err
	}

	reqURL := c.baseURL + apiPrefix + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	var br io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("mattermost: failed to encode request body: %w", err)
		}
		br = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, br)
	if err != nil {
		return fmt.Errorf("mattermost: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("mattermost: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("mattermost: failed to read response body: %w", err)
	}
	c.lg.DebugContext(ctx, "api call", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start), "size", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("mattermost: failed to parse %s %s response: %w", method, path, err)
	}
	return nil
}

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}
