// Package cache provides the time-bounded per-ticker cache used to shield
// the upstream data provider from redundant calls.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache stores JSON-encodable values with a TTL.
type Cache interface {
	// Get decodes the cached value for key into dest, or returns ErrMiss.
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores value under key for the given expiration.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	Close() error
}
