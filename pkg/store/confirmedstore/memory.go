package confirmedstore

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu        sync.Mutex
	addresses map[string]struct{}
}

// NewMemoryStore is the in-process fallback when neither a database nor a
// KV store is configured. Contents last for the process lifetime only.
func NewMemoryStore() Store {
	return &memoryStore{addresses: make(map[string]struct{})}
}

func (s *memoryStore) Insert(ctx context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.addresses[address]; ok {
		return false, nil
	}
	s.addresses[address] = struct{}{}
	return true, nil
}

func (s *memoryStore) Contains(ctx context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.addresses[address]
	return ok, nil
}

func (s *memoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.addresses)), nil
}

func (s *memoryStore) Close() error {
	return nil
}
