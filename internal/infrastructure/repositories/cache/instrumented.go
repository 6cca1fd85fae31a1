package cache

import (
	"context"
	"errors"
	"time"

	"coin-prices-service/internal/domain/interfaces"
	"coin-prices-service/internal/infrastructure/logging"
	"coin-prices-service/internal/infrastructure/metrics"
)

// InstrumentedCache wraps any Cache implementation with metrics and debug logs.
type InstrumentedCache struct {
	cache   interfaces.Cache
	backend string
	logger  logging.CacheLogger
}

func NewInstrumentedCache(cache interfaces.Cache, backend string) *InstrumentedCache {
	return &InstrumentedCache{
		cache:   cache,
		backend: backend,
		logger:  logging.Cache(),
	}
}

func (ic *InstrumentedCache) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	value, err := ic.cache.Get(ctx, key)

	result := "hit"
	switch {
	case errors.Is(err, ErrKeyNotFound):
		result = "miss"
		ic.logger.Miss(ctx, key)
	case err != nil:
		result = "error"
		ic.logger.CacheError(ctx, logging.CacheOpGet, key, err)
	default:
		ic.logger.Hit(ctx, key)
	}

	metrics.RecordCacheOperation(ic.backend, "get", result, time.Since(start).Seconds())
	return value, err
}

func (ic *InstrumentedCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	start := time.Now()
	err := ic.cache.Set(ctx, key, value, ttl)

	result := "success"
	if err != nil {
		result = "error"
		ic.logger.CacheError(ctx, logging.CacheOpSet, key, err)
	} else {
		ic.logger.Set(ctx, key, ttl)
	}

	metrics.RecordCacheOperation(ic.backend, "set", result, time.Since(start).Seconds())
	return err
}

func (ic *InstrumentedCache) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := ic.cache.Delete(ctx, key)

	result := "success"
	if err != nil {
		result = "error"
		ic.logger.CacheError(ctx, logging.CacheOpDelete, key, err)
	}

	metrics.RecordCacheOperation(ic.backend, "delete", result, time.Since(start).Seconds())
	return err
}

func (ic *InstrumentedCache) Ping(ctx context.Context) error {
	return ic.cache.Ping(ctx)
}

func (ic *InstrumentedCache) Close() error {
	return ic.cache.Close()
}

// Backend names the wrapped implementation.
func (ic *InstrumentedCache) Backend() string {
	return ic.backend
}
