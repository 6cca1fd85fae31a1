package cache

import "errors"

var (
	// ErrKeyNotFound is returned by Get for absent and expired keys.
	ErrKeyNotFound = errors.New("cache: key not found")

	ErrUnsupportedBackend = errors.New("cache: unsupported backend")
)
