// Package ttlcache memoizes fetch results for a fixed time window.
//
// Entries are evicted lazily: a stale entry is dropped by the Get or Has that
// finds it, and nothing runs in the background.
package ttlcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_restaurant/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const (
	// DashboardTTL is used for revenue analytics.
	DashboardTTL = 5 * time.Minute
	// OverviewTTL is used for the admin landing widgets.
	OverviewTTL = 2 * time.Minute
)

// Fetcher produces the value for a key on a miss.
type Fetcher[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

type Cache[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	dedup bool
	log   *slog.Logger
	name  string

	mu      sync.Mutex
	entries map[string]entry[V]
	group   singleflight.Group
}

type Option func(*options)

type options struct {
	now   func() time.Time
	dedup bool
	log   *slog.Logger
	name  string
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithInflightDedup makes concurrent CachedCall misses for one key share a
// single fetch. Without it each concurrent miss runs its own fetcher.
func WithInflightDedup() Option {
	return func(o *options) { o.dedup = true }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithName labels log lines from this cache.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// New creates a cache whose entries live for ttl. The ttl is fixed for the
// lifetime of the cache.
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		ttl:     ttl,
		now:     o.now,
		dedup:   o.dedup,
		log:     logger.OrDefault(o.log),
		name:    o.name,
		entries: make(map[string]entry[V]),
	}
}

func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key if it is still fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

// Has reports whether key holds a fresh value.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores value under key, stamped with the current time.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// Clear removes the given keys, or every entry when called with none.
func (c *Cache[V]) Clear(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.entries = make(map[string]entry[V])
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// Len counts stored entries, fresh or not yet evicted.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CachedCall returns the fresh value for key, or runs fetch and caches its
// result. A fetch error is returned as is and leaves the cache untouched.
func (c *Cache[V]) CachedCall(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	return c.fill(ctx, key, fetch)
}

// Refresh runs fetch regardless of what is cached and replaces the entry on success.
func (c *Cache[V]) Refresh(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	return c.fill(ctx, key, fetch)
}

func (c *Cache[V]) fill(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	if !c.dedup {
		return c.fetchAndStore(ctx, key, fetch)
	}

	// The shared fetch is detached from the caller that started it; each
	// waiter gives up only on its own context.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetchAndStore(context.WithoutCancel(ctx), key, fetch)
	})

	var zero V
	select {
	case res := <-ch:
		if res.Shared {
			c.log.DebugContext(ctx, "shared in-flight fetch", "cache", c.name, "key", key)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		val, _ := res.Val.(V)
		return val, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache[V]) fetchAndStore(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	v, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// lookup returns a fresh entry and deletes a stale one. Callers hold mu.
func (c *Cache[V]) lookup(key string) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}
