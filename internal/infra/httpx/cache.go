package httpx

import (
	"encoding/json"
	"sync"
	"time"

	"coupon-sync/internal/pkg/clock"
)

// DefaultTTL is applied when Put is called with a non-positive ttl.
const DefaultTTL = time.Hour

type cacheEntry struct {
	value     json.RawMessage
	expiresAt time.Time
}

// Cache is a time-boxed response cache consulted before the retrying client
// is invoked. Expired entries are treated as absent and dropped on read.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	clock   clock.Clock
}

func NewCache(clk clock.Clock) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		clock:   clk,
	}
}

func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) Put(key string, value json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	}
}
