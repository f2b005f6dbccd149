package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a map with per-entry expiry. Expired entries are dropped on read
// and by a periodic sweep until Close is called.
type Cache[V any] struct {
	mu    sync.Mutex
	items map[string]item[V]
	ttl   time.Duration
	now   func() time.Time

	done chan struct{}
	once sync.Once
}

func New[V any](ttl, sweep time.Duration) *Cache[V] {
	c := &Cache[V]{
		items: make(map[string]item[V]),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}

	if sweep > 0 {
		go c.cleanupLoop(sweep)
	}

	return c
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	it, exists := c.items[key]
	if !exists {
		return zero, false
	}

	if c.now().After(it.expiresAt) {
		delete(c.items, key)
		return zero, false
	}

	return it.value, true
}

// Close stops the sweep goroutine.
func (c *Cache[V]) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache[V]) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
		}
	}
}
