package cache

import (
	"context"
	"time"
)

// NullCache discards everything: every Get is a miss and Set is a no-op.
// This is what --no-cache plugs into the pipeline.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always reports a miss.
func (*NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the data.
func (*NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (*NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close is a no-op.
func (*NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
