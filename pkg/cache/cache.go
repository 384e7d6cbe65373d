package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// GetJSON decodes the value stored under key into v. It returns ErrCacheMiss
// when the key is absent or the stored value does not decode.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
