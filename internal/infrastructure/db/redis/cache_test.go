package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ResponseCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResponseCache(client), mr
}

func TestResponseCache_GetSet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "items", "/list")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "items", "/list", []byte(`[1,2]`), time.Minute))
	assert.True(t, mr.Exists("cache:items:/list"))

	b, ok, err := cache.Get(ctx, "items", "/list")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(b))

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "items", "/list")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after its ttl")
}

func TestResponseCache_ClearNamespace(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 450; i++ {
		require.NoError(t, cache.Set(ctx, "items", fmt.Sprintf("/k%d", i), []byte("v"), time.Minute))
	}
	require.NoError(t, cache.Set(ctx, "users", "/u", []byte("v"), time.Minute))

	require.NoError(t, cache.Clear(ctx, "items"))

	_, ok, _ := cache.Get(ctx, "items", "/k7")
	assert.False(t, ok)
	assert.Len(t, mr.Keys(), 1)
	assert.True(t, mr.Exists("cache:users:/u"), "other namespaces survive")
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := Open(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = Open(context.Background(), Options{Addr: mr.Addr(), DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
