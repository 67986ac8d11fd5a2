package progress

import (
	"sync"
	"time"
)

// Cache holds the last computed Summary for a limited time. Writers call
// Invalidate after changing sessions.
type Cache struct {
	mu       sync.RWMutex
	summary  *Summary
	storedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now}
}

func (c *Cache) Get() (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.summary == nil || c.now().Sub(c.storedAt) > c.ttl {
		return Summary{}, false
	}
	return *c.summary, true
}

func (c *Cache) Set(s Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary = &s
	c.storedAt = c.now()
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary = nil
}
