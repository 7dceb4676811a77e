package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/rusq/mattermost-mcp/internal/mattermost"
)

// Display name fallbacks.  The first non-empty value is used.
//
// Message author:
//
//  1. props.override_username (set by webhooks and bots);
//  2. username of the user record;
//  3. props.username;
//  4. user id.
//
// Channel label:
//
//  1. display_name;
//  2. name;
//  3. id.

// AuthorName returns the display name of the post author.  u may be nil if
// the user record is not available.
func AuthorName(p *mattermost.Post, u *mattermost.User) string {
	var username string
	if u != nil {
		username = u.Username
	}
	return firstNonEmpty(p.Props.OverrideUsername, username, p.Props.Username, p.UserID)
}

// ChannelLabel returns the label of the channel.
func ChannelLabel(ch *mattermost.Channel) string {
	if ch == nil {
		return ""
	}
	return firstNonEmpty(ch.DisplayName, ch.Name, ch.ID)
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// normalise converts posts into messages, keeping the order.  User records
// are fetched in one batch; if that fails, the author name falls back to the
// post fields.
func (g *Gateway) normalise(ctx context.Context, posts []*mattermost.Post) []Message {
	if len(posts) == 0 {
		return []Message{}
	}
	users := g.resolveUsers(ctx, posts)
	msgs := make([]Message, 0, len(posts))
	for _, p := range posts {
		var u *mattermost.User
		if uu, ok := users[p.UserID]; ok {
			u = &uu
		}
		msgs = append(msgs, Message{
			ID:                p.ID,
			ChannelID:         p.ChannelID,
			CreatedAt:         p.CreateAt,
			AuthorID:          p.UserID,
			AuthorDisplayName: AuthorName(p, u),
			Body:              p.Message,
			Type:              p.Type,
			ReplyCount:        p.ReplyCount,
			LastReplyAt:       p.LastReplyAt,
		})
	}
	return msgs
}

func (g *Gateway) resolveUsers(ctx context.Context, posts []*mattermost.Post) map[string]mattermost.User {
	seen := make(map[string]struct{}, len(posts))
	var ids []string
	for _, p := range posts {
		if p.UserID == "" || p.Props.OverrideUsername != "" {
			continue
		}
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}
	found, missing := g.users.get(ids)
	if len(missing) == 0 {
		return found
	}
	uu, err := g.be.GetUsersByIDs(ctx, missing)
	if err != nil {
		g.lg.WarnContext(ctx, "failed to resolve users, using fallback names", "count", len(missing), "error", err)
		return found
	}
	g.users.set(uu)
	for _, u := range uu {
		found[u.ID] = u
	}
	return found
}

// usercache keeps user records for the retention period.  Expired records
// are dropped when new ones are added.
type usercache struct {
	mu        sync.RWMutex
	users     map[string]cachedUser
	retention time.Duration
	now       func() time.Time
}

type cachedUser struct {
	mattermost.User
	cachedAt time.Time
}

func newUserCache(retention time.Duration) *usercache {
	return &usercache{users: make(map[string]cachedUser), retention: retention, now: time.Now}
}

// get returns the cached users and the ids that are missing or expired.
func (uc *usercache) get(ids []string) (map[string]mattermost.User, []string) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	now := uc.now()
	found := make(map[string]mattermost.User, len(ids))
	var missing []string
	for _, id := range ids {
		cu, ok := uc.users[id]
		if !ok || now.Sub(cu.cachedAt) >= uc.retention {
			missing = append(missing, id)
			continue
		}
		found[id] = cu.User
	}
	return found, missing
}

func (uc *usercache) set(users []mattermost.User) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	now := uc.now()
	for id, cu := range uc.users {
		if now.Sub(cu.cachedAt) >= uc.retention {
			delete(uc.users, id)
		}
	}
	for _, u := range users {
		uc.users[u.ID] = cachedUser{User: u, cachedAt: now}
	}
}

func (uc *usercache) len() int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.users)
}
