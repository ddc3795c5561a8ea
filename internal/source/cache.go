package source

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	appLog "agenda/internal/log"
	"agenda/internal/model"
)

// Cache is a single-writer, TTL-expiring cache of one table. Concurrent
// misses share one underlying fetch. Failed fetches are not cached and an
// expired table is never served as a fallback.
type Cache struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	table    *model.Table
	storedAt time.Time

	group singleflight.Group
}

// NewCache wraps src. A non-positive ttl disables caching.
func NewCache(src Source, ttl time.Duration) *Cache {
	return &Cache{
		src: src,
		ttl: ttl,
		now: time.Now,
	}
}

// Fetch returns the cached table while it is younger than the TTL and
// otherwise loads a new one from the wrapped source.
//
// The shared load is detached from ctx so one canceled caller cannot fail
// the others waiting on it; the source's own timeout still bounds it. A
// canceled caller stops waiting and gets ctx.Err().
func (c *Cache) Fetch(ctx context.Context) (*model.Table, error) {
	if t := c.fresh(); t != nil {
		return t, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("table", func() (any, error) {
		if t := c.fresh(); t != nil {
			return t, nil
		}
		t, err := c.src.Fetch(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.table = t
		c.storedAt = c.now()
		c.mu.Unlock()
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			appLog.Error("table fetch failed", res.Err, "shared", res.Shared)
			return nil, res.Err
		}
		return res.Val.(*model.Table), nil
	}
}

// Invalidate drops the cached table so the next Fetch reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.table = nil
	c.storedAt = time.Time{}
	c.mu.Unlock()
}

// FetchedAt reports when the cached table was stored; zero if empty.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storedAt
}

func (c *Cache) fresh() *model.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table == nil || c.ttl <= 0 {
		return nil
	}
	if c.now().Sub(c.storedAt) >= c.ttl {
		return nil
	}
	return c.table
}
