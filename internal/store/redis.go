package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// RedisStore shares the current set between server replicas
type RedisStore struct {
	rdb *goredis.Client
	key string
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(addr string, db int, key string) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis store requires store.redis_addr")
	}
	if key == "" {
		key = "atlasprompt:current"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{rdb: rdb, key: key}, nil
}

// Get reads the current set
func (s *RedisStore) Get(ctx context.Context) ([]model.PlaceRecord, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var records []model.PlaceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, fmt.Errorf("parse redis value: %w", err)
	}
	if records == nil {
		records = []model.PlaceRecord{}
	}
	return records, true, nil
}

// Replace overwrites the key with a single SET
func (s *RedisStore) Replace(ctx context.Context, records []model.PlaceRecord) error {
	if records == nil {
		records = []model.PlaceRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
