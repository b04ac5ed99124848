package market

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Cache serves values pushed by a feed (the Kafka tick consumer) and falls
// back to an inner source on miss. Entries expire after the configured TTL
// so a stalled feed does not pin stale prices forever.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	fallback Source
	ttl      time.Duration
}

type cacheEntry struct {
	value float64
	seen  time.Time
}

// NewCache constructs a Cache over an optional fallback source. A zero ttl
// means entries never expire.
func NewCache(fallback Source, ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]cacheEntry),
		fallback: fallback,
		ttl:      ttl,
	}
}

// Put records a freshly observed value for an asset.
func (c *Cache) Put(asset string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[asset] = cacheEntry{value: value, seen: time.Now()}
}

// CurrentValue returns the cached value for an asset, consulting the
// fallback source on a miss or expired entry.
func (c *Cache) CurrentValue(ctx context.Context, asset string) (float64, error) {
	c.mu.RLock()
	entry, ok := c.entries[asset]
	c.mu.RUnlock()

	if ok && (c.ttl == 0 || time.Since(entry.seen) <= c.ttl) {
		return entry.value, nil
	}
	if c.fallback == nil {
		return 0, fmt.Errorf("no cached value for asset %s: %w", asset, ErrNoData)
	}
	return c.fallback.CurrentValue(ctx, asset)
}
