package ports

import (
	"context"
	"time"
)

// ResponseCache stores serialized responses grouped by namespace. Clear drops
// every entry of a namespace at once; item writes use it instead of tracking
// which cached listings an individual change affects.
type ResponseCache interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context, namespace string) error
}
