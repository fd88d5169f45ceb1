package forecasts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// cacheKey rounds to two decimals (about 1 km), below the resolution of
// the upstream models.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

type cacheEntry struct {
	value   *snapshot
	expires time.Time
}

// weatherCache is a TTL cache that collapses concurrent misses for the same
// key into one load.
type weatherCache struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

func newWeatherCache(ttl time.Duration, clock clockwork.Clock) *weatherCache {
	return &weatherCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

func (c *weatherCache) get(key string) (*snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *weatherCache) put(key string, v *snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: v, expires: c.clock.Now().Add(c.ttl)}
}

// getOrLoad returns a fresh cached value or runs load once per key. A zero
// TTL disables caching but still collapses concurrent loads.
func (c *weatherCache) getOrLoad(ctx context.Context, key string, load func(context.Context) (*snapshot, error)) (*snapshot, error) {
	if c.ttl > 0 {
		if v, ok := c.get(key); ok {
			return v, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Detached so one caller cancelling does not fail the others.
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.put(key, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	}
}
