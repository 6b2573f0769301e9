package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// Options selects the Redis instance shared by the response cache and the
// rate limiter.
type Options struct {
	Addr     string
	Password string
	DB       int
	// PoolSize caps open connections; zero keeps the go-redis default.
	PoolSize int
	// DialTimeout bounds both the dial and the startup ping.
	DialTimeout time.Duration
}

// Open dials Redis and pings it once. The client is closed again when the
// ping fails, so callers can fall back to in-memory stores.
func Open(ctx context.Context, opts Options) (*redis.Client, error) {
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = dialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		PoolSize:    opts.PoolSize,
		DialTimeout: timeout,
	})

	if err := Ping(client)(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Ping returns a readiness check for client. Each call is bounded by the
// client's dial timeout and the error names the address.
func Ping(client *redis.Client) func(ctx context.Context) error {
	addr := client.Options().Addr
	timeout := client.Options().DialTimeout
	return func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", addr, err)
		}
		return nil
	}
}
