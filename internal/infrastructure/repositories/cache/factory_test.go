package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_CreateMemoryCache(t *testing.T) {
	c, err := NewFactory().CreateCache(context.Background(), Config{Type: CacheTypeMemory})
	require.NoError(t, err)

	instrumented, ok := c.(*InstrumentedCache)
	require.True(t, ok)
	assert.Equal(t, "memory", instrumented.Backend())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	_, err = c.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}

func TestFactory_UnsupportedBackend(t *testing.T) {
	_, err := NewFactory().CreateCache(context.Background(), Config{Type: "etcd"})
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestFactory_UnreachableRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	f := &Factory{pingTimeout: 500 * time.Millisecond}
	_, err := f.CreateCache(context.Background(), Config{Type: CacheTypeRedis, RedisAddr: "127.0.0.1:1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis cache")
}

func TestConfigAddress(t *testing.T) {
	assert.Equal(t, "127.0.0.1:11211", Config{Type: CacheTypeMemcached, MemcachedAddress: "127.0.0.1", MemcachedPort: 11211}.address())
	assert.Equal(t, "redis:6379", Config{Type: CacheTypeRedis, RedisAddr: "redis:6379"}.address())
	assert.Equal(t, "in-process", Config{Type: CacheTypeMemory}.address())
}
