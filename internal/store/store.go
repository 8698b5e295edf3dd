package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// ResultStore holds the single current result set.
//
// Replace is whole-set: there is no merge. Concurrent Replace calls are
// last-writer-wins, and a reader observes either the previous or the new set,
// never a mix.
// Backends may serialize Replace internally (the layered store does, so its
// memory and file copies agree); the last call to finish still wins.
type ResultStore interface {
	// Get returns the current set. found is false when nothing was stored yet.
	Get(ctx context.Context) (records []model.PlaceRecord, found bool, err error)

	// Replace atomically swaps the current set for records
	Replace(ctx context.Context, records []model.PlaceRecord) error
}

// New creates a store for the configured backend
func New(cfg model.StoreConfig) (ResultStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory":
		return NewMemoryStore(), nil

	case "file":
		return NewFileStore(cfg.Path), nil

	case "layered", "":
		return NewLayeredStore(cfg.Path), nil

	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisKey)

	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: memory, file, layered, redis)", cfg.Backend)
	}
}

// clone copies records so callers cannot mutate stored state
func clone(records []model.PlaceRecord) []model.PlaceRecord {
	out := make([]model.PlaceRecord, len(records))
	copy(out, records)
	return out
}
