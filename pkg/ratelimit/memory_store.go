package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore counts in process memory. Counters vanish on restart and are
// purged by go-cache once their window TTL passes.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(time.Hour, 10*time.Minute),
	}
}

func (s *MemoryStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if x, found := s.cache.Get(key); found {
		count := x.(int64) + 1
		s.cache.Set(key, count, ttl)
		return count, nil
	}

	s.cache.Set(key, int64(1), ttl)
	return 1, nil
}
