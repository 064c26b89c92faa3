package provider

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local ContextStore. Expired entries are dropped
// on Load.
type MemoryStore[C any] struct {
	mu    sync.Mutex
	items map[string]memEntry[C]
	now   func() time.Time
}

type memEntry[C any] struct {
	val       C
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[C any]() *MemoryStore[C] {
	return &MemoryStore[C]{items: make(map[string]memEntry[C]), now: time.Now}
}

// Load returns a copy of the stored value.
func (s *MemoryStore[C]) Load(_ context.Context, key string) (*C, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.items, key)
		return nil, nil
	}
	v := e.val
	return &v, nil
}

// Save stores a copy of val.
func (s *MemoryStore[C]) Save(_ context.Context, key string, val *C, ttl time.Duration) error {
	if val == nil {
		return s.Delete(context.Background(), key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memEntry[C]{val: *val}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = e
	return nil
}

func (s *MemoryStore[C]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Len counts stored entries, including expired ones not yet loaded.
func (s *MemoryStore[C]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var _ ContextStore[struct{}] = (*MemoryStore[struct{}])(nil)
