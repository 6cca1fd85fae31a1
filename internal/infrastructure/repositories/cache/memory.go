package cache

import (
	"context"
	"sync"
	"time"
)

type cacheItem struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (item *cacheItem) isExpired(now time.Time) bool {
	return !item.expiresAt.IsZero() && now.After(item.expiresAt)
}

// MemoryCache is an in-process Cache. Expired entries are dropped lazily.
type MemoryCache struct {
	items map[string]*cacheItem
	mu    sync.RWMutex
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*cacheItem),
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return "", ErrKeyNotFound
	}

	if now := c.now(); item.isExpired(now) {
		c.deleteIfExpired(key, now)
		return "", ErrKeyNotFound
	}

	return item.value, nil
}

// deleteIfExpired removes key unless a Set replaced it with a live entry
// after the caller saw it expire.
func (c *MemoryCache) deleteIfExpired(key string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[key]; ok && item.isExpired(now) {
		delete(c.items, key)
	}
}

// Set stores value for ttl; a non-positive ttl keeps the entry until deleted.
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	// sweep on write so abandoned keys do not pile up
	for k, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, k)
		}
	}

	item := &cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = now.Add(ttl)
	}
	c.items[key] = item
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

func (c *MemoryCache) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (c *MemoryCache) Close() error {
	return nil
}

// Size includes entries that expired but were not swept yet.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
