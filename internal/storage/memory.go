package storage

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps collections in a mutex-guarded map. It backs tests and
// single-process deployments that do not need durability.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string, v any) error {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	// An unreadable collection degrades to empty rather than failing reads.
	_ = json.Unmarshal(raw, v)
	return nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

type memoryTx struct {
	base   *MemoryStore
	staged map[string][]byte
}

func (tx *memoryTx) Get(ctx context.Context, key string, v any) error {
	raw, ok := tx.staged[key]
	if !ok {
		raw, ok = tx.base.data[key]
	}
	if !ok {
		return nil
	}
	_ = json.Unmarshal(raw, v)
	return nil
}

func (tx *memoryTx) Put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tx.staged[key] = raw
	return nil
}

// Atomic stages writes and commits them only when fn succeeds.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{base: s, staged: make(map[string][]byte)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for key, raw := range tx.staged {
		s.data[key] = raw
	}
	return nil
}
