package store

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/atlasprompt/internal/model"
)

const currentKey = "current"

// MemoryStore keeps the current set in process memory
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a new memory store. The current set never expires.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the current set
func (s *MemoryStore) Get(_ context.Context) ([]model.PlaceRecord, bool, error) {
	if val, found := s.cache.Get(currentKey); found {
		return clone(val.([]model.PlaceRecord)), true, nil
	}
	return nil, false, nil
}

// Replace swaps the current set
func (s *MemoryStore) Replace(_ context.Context, records []model.PlaceRecord) error {
	s.cache.Set(currentKey, clone(records), gocache.NoExpiration)
	return nil
}
