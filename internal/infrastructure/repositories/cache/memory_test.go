package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemoryCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache()
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_SetGet(t *testing.T) {
	c, _ := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "prices.USDT.BTC", `{"name":"BTC"}`, 30*time.Second))

	value, err := c.Get(ctx, "prices.USDT.BTC")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"BTC"}`, value)
}

func TestMemoryCache_MissingKey(t *testing.T) {
	c, _ := newTestMemoryCache()

	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "pairs.binance", "[]", 30*time.Second))

	clock.Advance(29 * time.Second)
	_, err := c.Get(ctx, "pairs.binance")
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = c.Get(ctx, "pairs.binance")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_ExpiredReadKeepsRefreshedEntry(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "index.USDT", `["BTC"]`, time.Second))
	clock.Advance(2 * time.Second)
	seenExpiredAt := clock.Now()

	// a Set lands between the expired read and its cleanup
	require.NoError(t, c.Set(ctx, "index.USDT", `["BTC","ETH"]`, time.Minute))
	c.deleteIfExpired("index.USDT", seenExpiredAt)

	value, err := c.Get(ctx, "index.USDT")
	require.NoError(t, err)
	assert.Equal(t, `["BTC","ETH"]`, value)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	clock.Advance(24 * time.Hour)

	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestMemoryCache_SetSweepsExpired(t *testing.T) {
	c, clock := newTestMemoryCache()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("old.%d", i), "v", time.Second))
	}
	clock.Advance(2 * time.Second)
	require.NoError(t, c.Set(ctx, "fresh", "v", time.Minute))

	assert.Equal(t, 1, c.Size())
}

func TestMemoryCache_Delete(t *testing.T) {
	c, _ := newTestMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_Ping(t *testing.T) {
	c, _ := newTestMemoryCache()
	assert.NoError(t, c.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Ping(ctx), context.Canceled)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("prices.USDT.C%d", i%5)
			_ = c.Set(ctx, key, "v", time.Minute)
			_, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Size())
}
