package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// InMemoryCache is a thread-safe LRU cache with TTL, used as the default
// agent-result cache.
type InMemoryCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
}

type lruEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

// NewInMemoryCache creates an LRU cache. capacity <= 0 defaults to 512;
// ttl <= 0 means entries never expire.
func NewInMemoryCache(capacity int, ttl time.Duration) *InMemoryCache {
	if capacity <= 0 {
		capacity = 512
	}
	return &InMemoryCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

func (c *InMemoryCache) Lookup(_ context.Context, key string) (string, bool, error) {
	hashed := HashKey(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[hashed]
	if !ok {
		return "", false, nil
	}
	ent := elem.Value.(*lruEntry)
	if c.ttl > 0 && time.Now().After(ent.expiresAt) {
		c.lru.Remove(elem)
		delete(c.items, hashed)
		return "", false, nil
	}
	c.lru.MoveToFront(elem)
	return ent.value, true, nil
}

func (c *InMemoryCache) Store(_ context.Context, key, value string) error {
	hashed := HashKey(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if elem, ok := c.items[hashed]; ok {
		c.lru.MoveToFront(elem)
		ent := elem.Value.(*lruEntry)
		ent.value = value
		ent.expiresAt = expiresAt
		return nil
	}

	elem := c.lru.PushFront(&lruEntry{key: hashed, value: value, expiresAt: expiresAt})
	c.items[hashed] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
	return nil
}

// Len returns the number of cached entries.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

var _ Cache = (*InMemoryCache)(nil)
