package repository

import (
	"context"
	"golang-portfolio/pkg/cache"
	"time"
)

type memoryStore struct {
	cache cache.Cache
}

// NewMemoryStore keeps collections in a go-cache instance with no expiration.
// Data does not survive a restart.
func NewMemoryStore() Store {
	return &memoryStore{
		cache: cache.NewCache(cache.NoExpiration, time.Hour),
	}
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := cache.GetFromCache[[]byte](s.cache, key)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.cache.Set(key, stored, cache.NoExpiration)
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
