// Package cache memoizes slow lookups for a bounded time.
//
// A Cache holds one value per key together with the time it was loaded. A
// value younger than the cache window is served as is, an older one is loaded
// again. Concurrent loads of the same key are collapsed into a single call.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader loads the value for a key. It is called at most once at a time per key.
type Loader[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value    V
	loadedAt time.Time
}

// Cache is a map of values with a freshness window. Its methods are safe for
// concurrent use.
type Cache[K comparable, V any] struct {
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[K]entry[V]
	group   singleflight.Group
}

// New creates a cache whose values are fresh for window. now is the clock,
// nil means time.Now.
func New[K comparable, V any](window time.Duration, now func() time.Time) *Cache[K, V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[K, V]{
		window:  window,
		now:     now,
		entries: make(map[K]entry[V]),
	}
}

// Window returns the freshness window.
func (c *Cache[K, V]) Window() time.Duration { return c.window }

// Get returns the value for key if it is fresh, otherwise it loads it with
// load. Concurrent callers missing the same key share a single call to load.
//
// A failed load is not stored: the error is returned and the previous value, if
// any, stays available through Peek.
func (c *Cache[K, V]) Get(ctx context.Context, key K, load Loader[V]) (V, error) {
	if v, ok := c.fresh(key); ok {
		return v, nil
	}
	return c.do(ctx, key, load, false)
}

// Refresh loads the value for key regardless of its age, and stores it.
// Concurrent Refresh calls on the same key share a single load.
func (c *Cache[K, V]) Refresh(ctx context.Context, key K, load Loader[V]) (V, error) {
	return c.do(ctx, key, load, true)
}

// Peek returns the last value stored for key whatever its age, and when it was loaded.
func (c *Cache[K, V]) Peek(key K) (v V, loadedAt time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, e.loadedAt, ok
}

// Fresh returns the value stored for key only if it is still fresh.
func (c *Cache[K, V]) Fresh(key K) (V, bool) { return c.fresh(key) }

// Put stores value for key, loaded now.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, loadedAt: c.now()}
}

// Len returns the number of keys stored.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[K, V]) fresh(key K) (v V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.loadedAt) >= c.window {
		return v, false
	}
	return e.value, true
}

// do runs load for key in the single flight group. The load is detached from
// ctx cancellation as its result is shared with other callers; ctx only bounds
// how long this caller waits.
func (c *Cache[K, V]) do(ctx context.Context, key K, load Loader[V], force bool) (v V, err error) {
	flight := fmt.Sprintf("%v", key)
	if force {
		// a forced load must not join a flight started before it was requested.
		flight = "refresh:" + flight
	}
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		if !force {
			// another flight may have completed between the caller's miss and now.
			if v, ok := c.fresh(key); ok {
				return v, nil
			}
		}
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.Put(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return v, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		return v, ctx.Err()
	}
}
