package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

// ResponseCache stores serialized responses under cache:<namespace>:<key>.
type ResponseCache struct {
	client *redis.Client
}

func NewResponseCache(client *redis.Client) *ResponseCache {
	return &ResponseCache{client: client}
}

func (c *ResponseCache) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.key(namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return b, true, nil
}

func (c *ResponseCache) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(namespace, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Clear deletes every key of the namespace. SCAN keeps the server responsive
// on large keyspaces, unlike KEYS.
func (c *ResponseCache) Clear(ctx context.Context, namespace string) error {
	iter := c.client.Scan(ctx, 0, c.key(namespace, "*"), scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("cache clear: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("cache clear: %w", err)
		}
	}
	return nil
}

func (c *ResponseCache) key(namespace, key string) string {
	return fmt.Sprintf("cache:%s:%s", namespace, key)
}
