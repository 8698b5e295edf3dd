package store

import (
	"context"
	"sync"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// LayeredStore keeps the set in memory and persists it to disk
type LayeredStore struct {
	mu     sync.Mutex // serializes Replace so both layers agree
	memory *MemoryStore
	file   *FileStore
}

// NewLayeredStore creates a new layered store
func NewLayeredStore(path string) *LayeredStore {
	return &LayeredStore{
		memory: NewMemoryStore(),
		file:   NewFileStore(path),
	}
}

// Get checks memory first, then disk
func (s *LayeredStore) Get(ctx context.Context) ([]model.PlaceRecord, bool, error) {
	if records, found, _ := s.memory.Get(ctx); found {
		return records, true, nil
	}

	records, found, err := s.file.Get(ctx)
	if err != nil || !found {
		return nil, false, err
	}

	// Promote to memory
	_ = s.memory.Replace(ctx, records)
	return records, true, nil
}

// Replace writes disk first so memory never holds a set that failed to persist
func (s *LayeredStore) Replace(ctx context.Context, records []model.PlaceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.Replace(ctx, records); err != nil {
		return err
	}
	return s.memory.Replace(ctx, records)
}
