package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryStoreSize bounds the number of live counters when no size is given.
const DefaultMemoryStoreSize = 10000

// MemoryStore keeps counters in process. Counts are not shared between
// replicas, so it only suits single-instance deployments and tests.
//
// The store holds at most size counters. Each client uses up to two (current and
// previous window); once full, the least recently used counter is evicted and
// that client's quota starts over. Size it above twice the expected number of
// distinct clients per window, or use the postgres store.
type MemoryStore struct {
	mu       sync.Mutex
	counters *expirable.LRU[string, int64]
}

// NewMemoryStore keeps each counter for ttl after its last increment; ttl
// should be at least two windows. A non-positive size means DefaultMemoryStoreSize.
func NewMemoryStore(ttl time.Duration, size int) *MemoryStore {
	if size <= 0 {
		size = DefaultMemoryStoreSize
	}
	return &MemoryStore{counters: expirable.NewLRU[string, int64](size, nil, ttl)}
}

func (m *MemoryStore) Increment(_ context.Context, key string, ceiling int64, _ time.Time) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := m.counters.Get(key)
	if n >= ceiling {
		return n, false, nil
	}
	n++
	m.counters.Add(key, n)
	return n, true, nil
}

func (m *MemoryStore) Count(_ context.Context, key string) (int64, error) {
	n, _ := m.counters.Peek(key)
	return n, nil
}
