package interfaces

import (
	"context"
	"time"
)

// Cache is the key/value gateway with per-entry expiry.
// Get returns cache.ErrKeyNotFound for absent or expired keys.
// Set failures are *errs.SetValueError.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
