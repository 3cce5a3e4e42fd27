// Package cache is a small JSON value cache. Redis backs it in production;
// Memory serves tests and single-process runs.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	// Get unmarshals the value under key into dest. It reports a hit; any
	// error counts as a miss.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Remember returns the cached value for key or calls fn, caching its result
// on success.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var v T
	if c.Get(ctx, key, &v) {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return v, err
	}
	_ = c.Set(ctx, key, v, ttl)
	return v, nil
}

func encode(v interface{}) ([]byte, error) { return json.Marshal(v) }

func decode(data []byte, dest interface{}) bool { return json.Unmarshal(data, dest) == nil }
