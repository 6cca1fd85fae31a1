package cache

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"coin-prices-service/internal/domain/errs"

	"github.com/bradfitz/gomemcache/memcache"
)

// memcacheClient is the subset of *memcache.Client used by MemcachedCache.
type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
	Ping() error
}

// MemcachedCache implements Cache on a memcached server.
// The client library has no context support, so ctx is only checked before each call.
type MemcachedCache struct {
	client memcacheClient
}

func NewMemcachedCache(address string, port int, timeout time.Duration) *MemcachedCache {
	client := memcache.New(net.JoinHostPort(address, strconv.Itoa(port)))
	client.Timeout = timeout
	return NewMemcachedCacheWithClient(client)
}

func NewMemcachedCacheWithClient(client memcacheClient) *MemcachedCache {
	return &MemcachedCache{client: client}
}

func (m *MemcachedCache) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	item, err := m.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return string(item.Value), nil
}

func (m *MemcachedCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return errs.NewSetValueError(key, err)
	}

	item := &memcache.Item{
		Key:        key,
		Value:      []byte(value),
		Expiration: expirationSeconds(ttl),
	}
	if err := m.client.Set(item); err != nil {
		return errs.NewSetValueError(key, err)
	}
	return nil
}

func (m *MemcachedCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := m.client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (m *MemcachedCache) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.client.Ping()
}

func (m *MemcachedCache) Close() error {
	return nil
}

// expirationSeconds rounds sub-second TTLs up so they do not mean "never expire".
func expirationSeconds(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	secs := int32(ttl / time.Second)
	if ttl%time.Second != 0 {
		secs++
	}
	return secs
}
