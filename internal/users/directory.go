// Package users resolves user ids into the public summaries embedded in
// voter listings.
package users

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

// Summary is the public projection of a user.
type Summary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func SummaryOf(u models.User) Summary {
	return Summary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// Source loads users by id. Unknown ids are simply absent from the result.
type Source interface {
	FindUsers(ctx context.Context, ids []uint) ([]models.User, error)
}

type cacheItem struct {
	summary   Summary
	expiresAt time.Time
}

// Directory caches summaries in a bounded LRU with a TTL and collapses
// concurrent lookups for the same set of ids.
type Directory struct {
	source Source
	cache  *lru.Cache[uint, cacheItem]
	ttl    time.Duration
	clock  clockwork.Clock
	group  singleflight.Group
}

func NewDirectory(source Source, size int, ttl time.Duration, clock clockwork.Clock) (*Directory, error) {
	if size <= 0 {
		size = 1024
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cache, err := lru.New[uint, cacheItem](size)
	if err != nil {
		return nil, fmt.Errorf("create user cache: %w", err)
	}
	return &Directory{source: source, cache: cache, ttl: ttl, clock: clock}, nil
}

// Summaries returns a summary for every known id.
func (d *Directory) Summaries(ctx context.Context, ids []uint) (map[uint]Summary, error) {
	out := make(map[uint]Summary, len(ids))
	now := d.clock.Now()

	var missing []uint
	for _, id := range ids {
		if item, ok := d.cache.Get(id); ok && now.Before(item.expiresAt) {
			out[id] = item.summary
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	slices.Sort(missing)
	missing = slices.Compact(missing)

	v, err, _ := d.group.Do(flightKey(missing), func() (interface{}, error) {
		return d.source.FindUsers(ctx, missing)
	})
	if err != nil {
		return out, fmt.Errorf("load users: %w", err)
	}

	expiresAt := now.Add(d.ttl)
	for _, u := range v.([]models.User) {
		s := SummaryOf(u)
		d.cache.Add(u.ID, cacheItem{summary: s, expiresAt: expiresAt})
		out[u.ID] = s
	}
	return out, nil
}

// Invalidate drops a cached summary, e.g. after a profile edit.
func (d *Directory) Invalidate(id uint) {
	d.cache.Remove(id)
}

func flightKey(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
