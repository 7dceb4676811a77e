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

// Package gateway translates read requests into Mattermost API calls and
// normalises the returned posts into messages.
package gateway

//go:generate mockgen -destination=mock_gateway/mock_gateway.go . Backend

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rusq/mattermost-mcp/internal/fault"
	"github.com/rusq/mattermost-mcp/internal/mattermost"
)

// Backend is the part of the Mattermost API used to read posts.
type Backend interface {
	GetPostsForChannel(ctx context.Context, channelID string, page, perPage int) (*mattermost.PostList, error)
	SearchPosts(ctx context.Context, teamID string, params mattermost.SearchParams) (*mattermost.PostList, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]mattermost.User, error)
}

// Directory resolves channel and team references.  It is satisfied by
// *directory.Cache.
type Directory interface {
	Channels(ctx context.Context) ([]mattermost.Channel, error)
	LookupChannel(ctx context.Context, ref string) (*mattermost.Channel, error)
	ResolveTeam(ctx context.Context, ref string) (*mattermost.Team, error)
	ResolveTeamByID(ctx context.Context, id string) (*mattermost.Team, error)
}

// DefUserRetention is how long resolved user names are kept.
const DefUserRetention = time.Hour

// Gateway executes list, fetch and search operations.
type Gateway struct {
	be    Backend
	dir   Directory
	team  string
	lg    *slog.Logger
	users *usercache
}

// Option is the functional option for the Gateway.
type Option func(*Gateway)

// WithTeam sets the team reference (id, name or display name) that scopes
// searches without a channel.
func WithTeam(ref string) Option {
	return func(g *Gateway) {
		g.team = ref
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(g *Gateway) {
		if lg != nil {
			g.lg = lg
		}
	}
}

// WithUserRetention sets the lifetime of cached user names.
func WithUserRetention(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.users.retention = d
		}
	}
}

// New creates a new Gateway.
func New(be Backend, dir Directory, opts ...Option) *Gateway {
	g := &Gateway{
		be:    be,
		dir:   dir,
		lg:    slog.Default(),
		users: newUserCache(DefUserRetention),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Scope narrows a search.  Empty fields are not applied.  Dates are in
// YYYY-MM-DD format.
type Scope struct {
	ChannelName string
	TeamID      string
	Before      string
	After       string
	On          string
}

// Message is the normalised post.
type Message struct {
	ID                string `json:"id"`
	ChannelID         string `json:"channel_id"`
	CreatedAt         int64  `json:"create_at"` // epoch milliseconds
	AuthorID          string `json:"user_id"`
	AuthorDisplayName string `json:"username"`
	Body              string `json:"message"`
	Type              string `json:"type,omitempty"`
	ReplyCount        int64  `json:"reply_count,omitempty"`
	LastReplyAt       int64  `json:"last_reply_at,omitempty"`
}

// Time returns the creation time of the message.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.CreatedAt)
}

// Block is the result of an operation on a single channel.  Channel is nil
// for a team-wide search.
type Block struct {
	Label    string
	Channel  *mattermost.Channel
	Messages []Message
}

// ListChannels returns the channels in directory order.  If restriction is
// not empty, only the channels whose name is in restriction are returned.
func (g *Gateway) ListChannels(ctx context.Context, restriction []string) ([]mattermost.Channel, error) {
	cc, err := g.dir.Channels(ctx)
	if err != nil {
		return nil, err
	}
	if len(restriction) == 0 {
		return cc, nil
	}
	allowed := make(map[string]struct{}, len(restriction))
	for _, name := range restriction {
		allowed[name] = struct{}{}
	}
	var ret []mattermost.Channel
	for _, ch := range cc {
		if _, ok := allowed[ch.Name]; ok {
			ret = append(ret, ch)
		}
	}
	return ret, nil
}

// FetchMessages returns the most recent limit messages of the channel ref.
func (g *Gateway) FetchMessages(ctx context.Context, ref string, limit int) (Block, error) {
	ch, err := g.dir.LookupChannel(ctx, ref)
	if err != nil {
		return Block{}, err
	}
	lg := g.lg.With("channel", ch.Name, "channel_id", ch.ID)
	lg.DebugContext(ctx, "fetching recent messages", "limit", limit)
	pl, err := g.be.GetPostsForChannel(ctx, ch.ID, 0, limit)
	if err != nil {
		return Block{}, fault.Backend("fetch messages", err)
	}
	msgs := g.normalise(ctx, pl.Ordered())
	lg.DebugContext(ctx, "fetched", "count", len(msgs))
	return Block{Label: ChannelLabel(ch), Channel: ch, Messages: msgs}, nil
}

// SearchMessages searches for query within the scope.  An empty query is an
// input error, no call is made in that case.
func (g *Gateway) SearchMessages(ctx context.Context, query string, sc Scope, limit int) ([]Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fault.Input("search messages", "query is required")
	}
	terms := SearchTerms(query, sc)
	g.lg.DebugContext(ctx, "searching", "terms", terms, "team_id", sc.TeamID, "limit", limit)
	pl, err := g.be.SearchPosts(ctx, sc.TeamID, mattermost.SearchParams{
		Terms:      terms,
		IsOrSearch: false,
		Page:       0,
		PerPage:    limit,
	})
	if err != nil {
		return nil, fault.Backend("search messages", err)
	}
	return g.normalise(ctx, pl.Ordered()), nil
}

// SearchChannel searches for query in the channel ref.  The search is scoped
// to the team of the channel, or to the configured team for channels that
// belong to no team (direct and group messages).
func (g *Gateway) SearchChannel(ctx context.Context, query string, ref string, sc Scope, limit int) (Block, error) {
	if strings.TrimSpace(query) == "" {
		return Block{}, fault.Input("search messages", "query is required")
	}
	ch, err := g.dir.LookupChannel(ctx, ref)
	if err != nil {
		return Block{}, err
	}
	sc.ChannelName = ch.Name
	sc.TeamID = ch.TeamID
	if sc.TeamID == "" {
		if sc.TeamID, err = g.TeamID(ctx); err != nil {
			return Block{}, err
		}
	}
	msgs, err := g.SearchMessages(ctx, query, sc, limit)
	if err != nil {
		return Block{}, err
	}
	return Block{Label: ChannelLabel(ch), Channel: ch, Messages: msgs}, nil
}

// SearchTeam searches for query in the configured team, or in all teams if
// no team is configured.
func (g *Gateway) SearchTeam(ctx context.Context, query string, sc Scope, limit int) (Block, error) {
	if strings.TrimSpace(query) == "" {
		return Block{}, fault.Input("search messages", "query is required")
	}
	teamID, err := g.TeamID(ctx)
	if err != nil {
		return Block{}, err
	}
	sc.ChannelName = ""
	sc.TeamID = teamID
	msgs, err := g.SearchMessages(ctx, query, sc, limit)
	if err != nil {
		return Block{}, err
	}
	return Block{Label: "Search: " + query, Messages: msgs}, nil
}

// TeamID returns the id of the configured team.  The reference is tried as
// an id first, then as a name or display name.  It returns an empty string
// if no team is configured.
func (g *Gateway) TeamID(ctx context.Context) (string, error) {
	if g.team == "" {
		return "", nil
	}
	if t, err := g.dir.ResolveTeamByID(ctx, g.team); err == nil {
		return t.ID, nil
	} else if fault.KindOf(err) != fault.ErrNotFound {
		return "", err
	}
	t, err := g.dir.ResolveTeam(ctx, g.team)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// SearchTerms builds the search string: the query followed by the in:,
// before:, after: and on: operators, in that order, for the fields of sc
// that are set.
func SearchTerms(query string, sc Scope) string {
	var sb strings.Builder
	sb.WriteString(query)
	for _, tok := range []struct{ op, val string }{
		{"in:", sc.ChannelName},
		{"before:", sc.Before},
		{"after:", sc.After},
		{"on:", sc.On},
	} {
		if tok.val == "" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(tok.op)
		sb.WriteString(tok.val)
	}
	return sb.String()
}
