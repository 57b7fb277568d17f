// Package cache provides a bounded in-memory TTL cache with per-key single
// flight loading.
package cache

import (
	"context"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/okian/matchload/pkg/metrics"
)

// Eviction reasons reported to metrics.
const (
	reasonExpired  = "expired"
	reasonCapacity = "capacity"
)

// Cache maps string keys to values of type V.
//
// Entries expire after the configured TTL (0 keeps them until evicted). When
// MaxEntries is reached the oldest inserted entry is evicted first; reads do
// not refresh an entry's position or lifetime.
type Cache[V any] struct {
	items *ttlcache.Cache[string, V]
	config
	group singleflight.Group
}

// New creates a cache.
func New[V any](opts ...Option) *Cache[V] {
	cfg := config{maxEntries: 256, name: "default"}
	for _, opt := range opts {
		opt(&cfg)
	}
	ttlOpts := []ttlcache.Option[string, V]{
		ttlcache.WithTTL[string, V](cfg.ttl),
		ttlcache.WithDisableTouchOnHit[string, V](),
	}
	if cfg.maxEntries > 0 {
		ttlOpts = append(ttlOpts, ttlcache.WithCapacity[string, V](uint64(cfg.maxEntries)))
	}
	c := &Cache[V]{items: ttlcache.New(ttlOpts...), config: cfg}
	c.items.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, V]) {
		switch reason {
		case ttlcache.EvictionReasonExpired:
			metrics.RecordCacheEviction(c.name, reasonExpired)
		case ttlcache.EvictionReasonCapacityReached:
			metrics.RecordCacheEviction(c.name, reasonCapacity)
		}
	})
	return c
}

// Get returns the live value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	if item := c.items.Get(key); item != nil {
		metrics.RecordCacheHit(c.name)
		return item.Value(), true
	}
	c.items.DeleteExpired()
	metrics.RecordCacheMiss(c.name)
	metrics.UpdateCacheEntries(c.name, c.items.Len())
	var zero V
	return zero, false
}

// Set stores value under key, replacing any previous value and restarting
// its TTL. A replaced key counts as the newest insert.
func (c *Cache[V]) Set(key string, value V) {
	c.items.Delete(key)
	c.items.Set(key, value, ttlcache.DefaultTTL)
	metrics.UpdateCacheEntries(c.name, c.items.Len())
}

// GetOrLoad returns the cached value for key or calls load once for all
// concurrent callers of the same key. Errors are not cached.
//
// load does not inherit the caller's cancellation; each caller returns early
// when its own ctx is done. Loaders apply their own timeouts.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Delete drops key.
func (c *Cache[V]) Delete(key string) {
	c.items.Delete(key)
	metrics.UpdateCacheEntries(c.name, c.items.Len())
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.items.DeleteAll()
	metrics.UpdateCacheEntries(c.name, 0)
}

// Len returns the number of stored entries, expired ones included until they
// are touched.
func (c *Cache[V]) Len() int {
	return c.items.Len()
}

// peek reads without touching metrics.
func (c *Cache[V]) peek(key string) (V, bool) {
	if item := c.items.Get(key); item != nil {
		return item.Value(), true
	}
	var zero V
	return zero, false
}
