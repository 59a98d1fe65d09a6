package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a small JSON-value cache.
type Store interface {
	// Set stores value under key for the given expiration (0 = no expiry).
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Get decodes the cached value into dest; ErrMiss when absent.
	Get(ctx context.Context, key string, dest interface{}) error
	// Delete removes a key.
	Delete(ctx context.Context, key string) error
	// Close releases the backing connection.
	Close() error
}
