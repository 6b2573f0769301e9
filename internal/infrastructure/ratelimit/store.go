// Package ratelimit builds fixed-window limiters on a Redis store shared by
// every instance, or on a process-local store when Redis is unavailable.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	defaultPrefix   = "ratelimit"
	cleanupInterval = 5 * time.Minute
)

// NewStore returns a Redis-backed store when client is non-nil and an
// in-memory store otherwise.
func NewStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          defaultPrefix,
			CleanUpInterval: cleanupInterval,
		}), nil
	}

	store, err := limiterRedis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: defaultPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis rate limit store: %w", err)
	}
	return store, nil
}

// NewLimiter allows requests per period for each key.
func NewLimiter(store limiter.Store, requests int64, period time.Duration) *limiter.Limiter {
	return limiter.New(store, limiter.Rate{Period: period, Limit: requests})
}
