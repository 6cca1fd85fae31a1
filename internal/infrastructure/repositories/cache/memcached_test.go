package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"coin-prices-service/internal/domain/errs"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMemcacheClient struct {
	mock.Mock
}

func (m *MockMemcacheClient) Get(key string) (*memcache.Item, error) {
	args := m.Called(key)
	item, _ := args.Get(0).(*memcache.Item)
	return item, args.Error(1)
}

func (m *MockMemcacheClient) Set(item *memcache.Item) error {
	return m.Called(item).Error(0)
}

func (m *MockMemcacheClient) Delete(key string) error {
	return m.Called(key).Error(0)
}

func (m *MockMemcacheClient) Ping() error {
	return m.Called().Error(0)
}

func TestMemcachedCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		client := new(MockMemcacheClient)
		client.On("Get", "prices.USDT.BTC").Return(&memcache.Item{Key: "prices.USDT.BTC", Value: []byte(`{"name":"BTC"}`)}, nil)

		value, err := NewMemcachedCacheWithClient(client).Get(ctx, "prices.USDT.BTC")

		require.NoError(t, err)
		assert.Equal(t, `{"name":"BTC"}`, value)
	})

	t.Run("miss", func(t *testing.T) {
		client := new(MockMemcacheClient)
		client.On("Get", "prices.USDT.DOGE").Return(nil, memcache.ErrCacheMiss)

		_, err := NewMemcachedCacheWithClient(client).Get(ctx, "prices.USDT.DOGE")

		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("cancelled context skips the call", func(t *testing.T) {
		client := new(MockMemcacheClient)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewMemcachedCacheWithClient(client).Get(cancelled, "k")

		assert.ErrorIs(t, err, context.Canceled)
		client.AssertNotCalled(t, "Get", mock.Anything)
	})
}

func TestMemcachedCache_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("expiration in seconds", func(t *testing.T) {
		client := new(MockMemcacheClient)
		client.On("Set", mock.MatchedBy(func(item *memcache.Item) bool {
			return item.Key == "pairs.binance" && string(item.Value) == "[]" && item.Expiration == 30
		})).Return(nil)

		require.NoError(t, NewMemcachedCacheWithClient(client).Set(ctx, "pairs.binance", "[]", 30*time.Second))
		client.AssertExpectations(t)
	})

	t.Run("rejected write", func(t *testing.T) {
		client := new(MockMemcacheClient)
		client.On("Set", mock.Anything).Return(errors.New("SERVER_ERROR out of memory"))

		err := NewMemcachedCacheWithClient(client).Set(ctx, "k", "v", time.Second)

		assert.ErrorIs(t, err, errs.ErrSetValue)
	})
}

func TestMemcachedCache_DeleteMissIsNotAnError(t *testing.T) {
	client := new(MockMemcacheClient)
	client.On("Delete", "k").Return(memcache.ErrCacheMiss)

	assert.NoError(t, NewMemcachedCacheWithClient(client).Delete(context.Background(), "k"))
}

func TestExpirationSeconds(t *testing.T) {
	assert.Equal(t, int32(0), expirationSeconds(0))
	assert.Equal(t, int32(0), expirationSeconds(-time.Second))
	assert.Equal(t, int32(1), expirationSeconds(200*time.Millisecond))
	assert.Equal(t, int32(30), expirationSeconds(30*time.Second))
	assert.Equal(t, int32(31), expirationSeconds(30*time.Second+time.Millisecond))
}
