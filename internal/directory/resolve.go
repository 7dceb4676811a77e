package directory

import (
	"context"
	"slices"

	"github.com/rusq/mattermost-mcp/internal/fault"
	"github.com/rusq/mattermost-mcp/internal/mattermost"
)

// ResolveChannel returns the channel with the exact name ref, or, if there
// is none, the channel with the exact display name ref.  The first match in
// directory order wins.
func (c *Cache) ResolveChannel(ctx context.Context, ref string) (*mattermost.Channel, error) {
	if err := c.warm(ctx); err != nil {
		return nil, err
	}
	cc, err := c.loadChannels(ctx)
	if err != nil {
		return nil, err
	}
	if ch := find(cc, func(ch mattermost.Channel) bool { return ch.Name == ref }); ch != nil {
		return ch, nil
	}
	if ch := find(cc, func(ch mattermost.Channel) bool { return ch.DisplayName == ref }); ch != nil {
		return ch, nil
	}
	return nil, fault.NotFound("resolve channel", "channel", ref)
}

// ResolveChannelByID returns the channel with the id.
func (c *Cache) ResolveChannelByID(ctx context.Context, id string) (*mattermost.Channel, error) {
	if err := c.warm(ctx); err != nil {
		return nil, err
	}
	cc, err := c.loadChannels(ctx)
	if err != nil {
		return nil, err
	}
	if ch := find(cc, func(ch mattermost.Channel) bool { return ch.ID == id }); ch != nil {
		return ch, nil
	}
	return nil, fault.NotFound("resolve channel", "channel id", id)
}

// LookupChannel resolves a reference that may be a channel name, display
// name or id, in that order.
func (c *Cache) LookupChannel(ctx context.Context, ref string) (*mattermost.Channel, error) {
	ch, err := c.ResolveChannel(ctx, ref)
	if err == nil || fault.KindOf(err) != fault.ErrNotFound {
		return ch, err
	}
	if ch, err := c.ResolveChannelByID(ctx, ref); err == nil {
		return ch, nil
	}
	return nil, fault.NotFound("lookup channel", "channel", ref)
}

// ResolveTeam returns the team with the exact name ref, or, if there is
// none, the team with the exact display name ref.
func (c *Cache) ResolveTeam(ctx context.Context, ref string) (*mattermost.Team, error) {
	if err := c.warm(ctx); err != nil {
		return nil, err
	}
	tt, err := c.loadTeams(ctx)
	if err != nil {
		return nil, err
	}
	if t := find(tt, func(t mattermost.Team) bool { return t.Name == ref }); t != nil {
		return t, nil
	}
	if t := find(tt, func(t mattermost.Team) bool { return t.DisplayName == ref }); t != nil {
		return t, nil
	}
	return nil, fault.NotFound("resolve team", "team", ref)
}

// ResolveTeamByID returns the team with the id.
func (c *Cache) ResolveTeamByID(ctx context.Context, id string) (*mattermost.Team, error) {
	if err := c.warm(ctx); err != nil {
		return nil, err
	}
	tt, err := c.loadTeams(ctx)
	if err != nil {
		return nil, err
	}
	if t := find(tt, func(t mattermost.Team) bool { return t.ID == id }); t != nil {
		return t, nil
	}
	return nil, fault.NotFound("resolve team", "team id", id)
}

// EffectiveChannels returns the channel references a call operates on:
//
//  1. explicit, if not empty, verbatim and in the given order;
//  2. restricted, if not empty, verbatim and in the given order;
//  3. names of all known channels, in directory order;
//  4. empty list.
//
// The directory is only consulted in case 3.
func (c *Cache) EffectiveChannels(ctx context.Context, explicit, restricted []string) ([]string, error) {
	if len(explicit) > 0 {
		return slices.Clone(explicit), nil
	}
	if len(restricted) > 0 {
		return slices.Clone(restricted), nil
	}
	cc, err := c.loadChannels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cc))
	for _, ch := range cc {
		names = append(names, ch.Name)
	}
	return names, nil
}

// Targets is EffectiveChannels with the configured restriction.
func (c *Cache) Targets(ctx context.Context, explicit []string) ([]string, error) {
	return c.EffectiveChannels(ctx, explicit, c.restriction)
}

// find returns a copy of the first element satisfying match.
func find[T any](s []T, match func(T) bool) *T {
	if i := slices.IndexFunc(s, match); i >= 0 {
		v := s[i]
		return &v
	}
	return nil
}
