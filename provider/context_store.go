package provider

import (
	"context"
	"time"
)

// ContextStore persists typed values under opaque string keys.
// Backends live in their own packages (redis, session file store).
type ContextStore[C any] interface {
	// Load returns (nil, nil) when the key is absent or expired.
	Load(ctx context.Context, key string) (*C, error)
	// Save stores val; a ttl of 0 never expires.
	Save(ctx context.Context, key string, val *C, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
