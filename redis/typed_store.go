package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/scribekit/provider"
)

// TypedStore is a provider.ContextStore that keeps JSON values under
// "<prefix>:<key>".
type TypedStore[C any] struct {
	client *Client
	prefix string
}

// NewTypedStore creates a store. An empty prefix uses the client's
// configured key prefix.
func NewTypedStore[C any](client *Client, prefix string) *TypedStore[C] {
	if prefix == "" {
		prefix = client.cfg.KeyPrefix
	}
	return &TypedStore[C]{client: client, prefix: prefix}
}

func (s *TypedStore[C]) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

// Load returns (nil, nil) for a missing key.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, err := s.client.Get(ctx, s.key(key))
	if errors.Is(err, ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis load %q: %w", key, err)
	}
	var v C
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("redis decode %q: %w", key, err)
	}
	return &v, nil
}

// Save stores val as JSON; ttl 0 never expires.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	if val == nil {
		return s.Delete(ctx, key)
	}
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("redis encode %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl); err != nil {
		return fmt.Errorf("redis save %q: %w", key, err)
	}
	return nil
}

func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

var _ provider.ContextStore[struct{}] = (*TypedStore[struct{}])(nil)
