package cache

import (
	"context"
	"fmt"
	"time"

	"coin-prices-service/internal/domain/interfaces"
	"coin-prices-service/internal/infrastructure/logging"
)

// CacheType represents the type of cache implementation
type CacheType string

const (
	CacheTypeMemory    CacheType = "memory"
	CacheTypeRedis     CacheType = "redis"
	CacheTypeMemcached CacheType = "memcached"
)

// Config holds cache configuration options
type Config struct {
	Type CacheType

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MemcachedAddress        string
	MemcachedPort           int
	MemcachedConnectTimeout time.Duration
	MemcachedTimeout        time.Duration
}

// Factory provides methods to create cache instances
type Factory struct {
	pingTimeout time.Duration
}

func NewFactory() *Factory {
	return &Factory{pingTimeout: 5 * time.Second}
}

// CreateCache builds the configured backend, checks it is reachable and
// wraps it with InstrumentedCache.
func (f *Factory) CreateCache(ctx context.Context, config Config) (interfaces.Cache, error) {
	var (
		backend     interfaces.Cache
		pingTimeout = f.pingTimeout
	)

	switch config.Type {
	case CacheTypeMemory:
		backend = NewMemoryCache()

	case CacheTypeRedis:
		backend = NewRedisCache(config.RedisAddr, config.RedisPassword, config.RedisDB)

	case CacheTypeMemcached:
		backend = NewMemcachedCache(config.MemcachedAddress, config.MemcachedPort, config.MemcachedTimeout)
		if config.MemcachedConnectTimeout > 0 {
			pingTimeout = config.MemcachedConnectTimeout
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, config.Type)
	}

	logging.Info(ctx, "Creating cache", logging.Fields{
		logging.FieldCacheBackend: string(config.Type),
		"addr":                    config.address(),
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := backend.Ping(pingCtx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to connect to %s cache at %s: %w", config.Type, config.address(), err)
	}

	logging.Info(ctx, "Cache connection established", logging.Fields{
		logging.FieldCacheBackend: string(config.Type),
	})

	return NewInstrumentedCache(backend, string(config.Type)), nil
}

func (c Config) address() string {
	switch c.Type {
	case CacheTypeRedis:
		return c.RedisAddr
	case CacheTypeMemcached:
		return fmt.Sprintf("%s:%d", c.MemcachedAddress, c.MemcachedPort)
	default:
		return "in-process"
	}
}
