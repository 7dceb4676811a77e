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

// Package directory maintains the in-memory mirror of the Mattermost team
// and channel directory and resolves user supplied references against it.
//
// The directory is fetched lazily, on the first call that needs it, and is
// kept for the configured TTL.  A call made after the TTL has passed fetches
// the directory again before it proceeds.  Each directory kind (teams,
// channels) is held in its own slot and is replaced as a whole.
package directory

//go:generate mockgen -destination=mock_directory/mock_directory.go . Backend

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rusq/mattermost-mcp/internal/fault"
	"github.com/rusq/mattermost-mcp/internal/mattermost"
)

const (
	// DefTTL is the default lifetime of the directory snapshot.
	DefTTL = 3600 * time.Second
	// DefPageSize is the default page size of directory listings.
	DefPageSize = 200
	// DefFetchTimeout is the default time limit for one directory fetch.
	DefFetchTimeout = 2 * time.Minute
	// maxPages guards against a server that ignores per_page.
	maxPages = 10000
)

// Backend is the part of the Mattermost API used to fetch the directory.
type Backend interface {
	GetTeams(ctx context.Context, page, perPage int) ([]mattermost.Team, error)
	GetChannels(ctx context.Context, page, perPage int) ([]mattermost.Channel, error)
	GetChannelsForTeam(ctx context.Context, teamID string, page, perPage int) ([]mattermost.Channel, error)
}

// Cache is the directory cache.  Zero value is not usable, use New.
type Cache struct {
	be          Backend
	ttl         time.Duration
	timeout     time.Duration
	now         func() time.Time
	pageSize    int
	lg          *slog.Logger
	restriction []string

	teams    slot[mattermost.Team]
	channels slot[mattermost.Channel]
	sf       singleflight.Group
}

// Option is the functional option for the Cache.
type Option func(*Cache)

// WithTTL sets the snapshot lifetime.  Zero TTL means the snapshot never
// expires.  Negative values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithFetchTimeout sets the time limit for one directory fetch.  The fetch
// is shared by all callers waiting on it, and is not cancelled when any of
// them gives up.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock sets the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPageSize sets the page size for directory listings.
func WithPageSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Cache) {
		if lg != nil {
			c.lg = lg
		}
	}
}

// WithRestriction sets the configured channel restriction list.  It is used
// by Targets when the caller does not supply channels.
func WithRestriction(names []string) Option {
	return func(c *Cache) {
		c.restriction = slices.Clone(names)
	}
}

// New creates a new directory cache.  It does not call the backend, see
// Open.
func New(be Backend, opts ...Option) *Cache {
	c := &Cache{
		be:       be,
		ttl:      DefTTL,
		timeout:  DefFetchTimeout,
		now:      time.Now,
		pageSize: DefPageSize,
		lg:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open warms up the cache, fetching teams and channels concurrently.
func (c *Cache) Open(ctx context.Context) error {
	start := time.Now()
	if err := c.loadAll(ctx); err != nil {
		return err
	}
	c.lg.InfoContext(ctx, "directory loaded", "teams", c.teams.len(), "channels", c.channels.len(), "took", time.Since(start))
	return nil
}

// warm loads whichever directory kinds are cold or expired.  Resolutions
// call it, so that the first one fetches both teams and channels.
func (c *Cache) warm(ctx context.Context) error {
	now := c.now()
	if c.teams.fresh(now) && c.channels.fresh(now) {
		return nil
	}
	return c.loadAll(ctx)
}

func (c *Cache) loadAll(ctx context.Context) error {
	var eg errgroup.Group
	eg.Go(func() error {
		_, err := c.loadTeams(ctx)
		return err
	})
	eg.Go(func() error {
		_, err := c.loadChannels(ctx)
		return err
	})
	return eg.Wait()
}

// Restriction returns the configured channel restriction list.
func (c *Cache) Restriction() []string {
	return slices.Clone(c.restriction)
}

// Teams returns the teams in directory order.
func (c *Cache) Teams(ctx context.Context) ([]mattermost.Team, error) {
	tt, err := c.loadTeams(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(tt), nil
}

// Channels returns the channels in directory order.
func (c *Cache) Channels(ctx context.Context) ([]mattermost.Channel, error) {
	cc, err := c.loadChannels(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(cc), nil
}

func (c *Cache) expiry() time.Time {
	if c.ttl == 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *Cache) loadTeams(ctx context.Context) ([]mattermost.Team, error) {
	return load(ctx, c, &c.teams, "teams", func(ctx context.Context) ([]mattermost.Team, error) {
		return fetchAll(ctx, c.pageSize, c.be.GetTeams)
	})
}

func (c *Cache) loadChannels(ctx context.Context) ([]mattermost.Channel, error) {
	return load(ctx, c, &c.channels, "channels", c.fetchChannels)
}

// fetchChannels fetches the system-wide channel listing.  Tokens without
// the permission to list all channels get 403, in which case the channels
// are collected team by team.
func (c *Cache) fetchChannels(ctx context.Context) ([]mattermost.Channel, error) {
	cc, err := fetchAll(ctx, c.pageSize, c.be.GetChannels)
	if err == nil || !mattermost.IsStatus(err, http.StatusForbidden) {
		return cc, err
	}
	c.lg.DebugContext(ctx, "system-wide channel listing is forbidden, listing per team")
	teams, err := c.loadTeams(ctx)
	if err != nil {
		return nil, err
	}
	cc = nil
	for _, t := range teams {
		tc, err := fetchAll(ctx, c.pageSize, func(ctx context.Context, page, perPage int) ([]mattermost.Channel, error) {
			return c.be.GetChannelsForTeam(ctx, t.ID, page, perPage)
		})
		if err != nil {
			return nil, err
		}
		for i := range tc {
			if tc[i].TeamName == "" {
				tc[i].TeamName = t.Name
				tc[i].TeamDisplayName = t.DisplayName
			}
		}
		cc = append(cc, tc...)
	}
	return cc, nil
}

// load returns the slot value, fetching it if the slot is empty or expired.
// Concurrent callers on a cold slot share one fetch.  The fetch runs on a
// context detached from the caller, so a caller that gives up does not
// fail the others.
func load[T any](ctx context.Context, c *Cache, s *slot[T], key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := s.get(c.now()); ok {
		return v, nil
	}
	ch := c.sf.DoChan(key, func() (any, error) {
		if v, ok := s.get(c.now()); ok {
			return v, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		start := time.Now()
		items, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		s.set(items, c.expiry())
		c.lg.DebugContext(ctx, "directory fetched", "kind", key, "count", len(items), "took", time.Since(start))
		return items, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, fault.Backend("directory: fetch "+key, r.Err)
		}
		if r.Shared {
			c.lg.DebugContext(ctx, "directory fetch shared", "kind", key)
		}
		return r.Val.([]T), nil
	case <-ctx.Done():
		return nil, fault.Backend("directory: fetch "+key, context.Cause(ctx))
	}
}

// fetchAll calls fn page by page until it returns a short page.
func fetchAll[T any](ctx context.Context, perPage int, fn func(ctx context.Context, page, perPage int) ([]T, error)) ([]T, error) {
	var all []T
	for page := 0; page < maxPages; page++ {
		items, err := fn(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < perPage {
			break
		}
	}
	return all, nil
}

// slot holds one directory kind.  Zero expiresAt on a loaded slot means it
// never expires.
type slot[T any] struct {
	mu        sync.RWMutex
	val       []T
	loaded    bool
	expiresAt time.Time
}

func (s *slot[T]) get(now time.Time) ([]T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, false
	}
	if !s.expiresAt.IsZero() && now.After(s.expiresAt) {
		return nil, false
	}
	return s.val, true
}

func (s *slot[T]) fresh(now time.Time) bool {
	_, ok := s.get(now)
	return ok
}

func (s *slot[T]) set(v []T, expiresAt time.Time) {
	s.mu.Lock()
	s.val = v
	s.loaded = true
	s.expiresAt = expiresAt
	s.mu.Unlock()
}

func (s *slot[T]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.val)
}
