// Package memory is an in-process cache used when no Redis address is configured.
package memory

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/JMURv/session-keeper/internal/cache"
	"github.com/goccy/go-json"
)

type entry struct {
	val       []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type Cache struct {
	mu    sync.Mutex
	items map[string]entry
}

func New() *Cache {
	return &Cache{items: make(map[string]entry)}
}

func (c *Cache) Close() error {
	return nil
}

func (c *Cache) GetToStruct(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	e, ok := c.items[key]
	if ok && e.expired(time.Now()) {
		delete(c.items, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return cache.ErrNotFoundInCache
	}
	return json.Unmarshal(e.val, dest)
}

func (c *Cache) Set(_ context.Context, t time.Duration, key string, val any) {
	bytes, err := json.Marshal(val)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{val: bytes, expiresAt: deadline(t)}
}

func (c *Cache) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok && !e.expired(time.Now()) {
		return false, nil
	}

	c.items[key] = entry{val: []byte("1"), expiresAt: deadline(ttl)}
	return true, nil
}

func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// InvalidateKeysByPattern accepts glob patterns in the same shape as Redis SCAN MATCH.
func (c *Cache) InvalidateKeysByPattern(_ context.Context, pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.items {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.items, k)
		}
	}
}

func deadline(t time.Duration) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Now().Add(t)
}
