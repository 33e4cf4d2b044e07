package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by Set when the write would push the store
// past its byte budget.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a typed key/value facade over an in-memory map with a hard byte
// quota. Values are stored as their JSON encoding; the store does not
// interpret them. Bytes in use counts key length plus encoded value length.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
	quota int64
	bytes int64
}

// NewStore creates a store budgeted to quota bytes. quota <= 0 disables the
// budget.
func NewStore(quota int64) *Store {
	return &Store{
		items: make(map[string][]byte),
		quota: quota,
	}
}

// Get unmarshals the value stored under key into out. The second return is
// false when the key is absent; out is left untouched in that case.
func (s *Store) Get(ctx context.Context, key string, out any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the JSON encoding of v under key, replacing any prior value.
func (s *Store) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.bytes + int64(len(raw))
	if prev, ok := s.items[key]; ok {
		next -= int64(len(prev))
	} else {
		next += int64(len(key))
	}
	if s.quota > 0 && next > s.quota {
		return ErrQuotaExceeded
	}
	s.items[key] = raw
	s.bytes = next
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.items[key]; ok {
		s.bytes -= int64(len(key)) + int64(len(prev))
		delete(s.items, key)
	}
	return nil
}

// Clear drops every key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string][]byte)
	s.bytes = 0
	return nil
}

// BytesInUse reports the current byte footprint.
func (s *Store) BytesInUse(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bytes, nil
}
