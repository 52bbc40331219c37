package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value cache with per-entry TTL
type Cache interface {
	// Get returns the cached value or ErrMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for ttl; a zero ttl means no expiry
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key
	Delete(ctx context.Context, key string) error

	// Close releases resources
	Close() error
}
