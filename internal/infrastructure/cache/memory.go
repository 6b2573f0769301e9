// Package cache provides an in-process ResponseCache used when Redis is not
// configured or unreachable.
package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMaxEntries = 1024

// MemoryCache is an LRU with a single expiry applied to every entry. The ttl
// passed to Set is capped by that expiry.
type MemoryCache struct {
	entries *lru.LRU[string, entry]
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryCache{entries: lru.NewLRU[string, entry](maxEntries, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	e, ok := c.entries.Get(namespacedKey(namespace, key))
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.entries.Remove(namespacedKey(namespace, key))
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries.Add(namespacedKey(namespace, key), e)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context, namespace string) error {
	prefix := namespace + ":"
	for _, k := range c.entries.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.entries.Remove(k)
		}
	}
	return nil
}

func namespacedKey(namespace, key string) string {
	return namespace + ":" + key
}
