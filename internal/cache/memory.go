package cache

import (
	"context"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/storage"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var _ storage.ResponseCache = (*MemoryCache)(nil)

// MemoryCache is an in-process LRU with a single TTL for every entry. The ttl
// argument of Set is ignored; entries expire after the TTL given at construction.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size < 1 {
		size = 1
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m.lru.Get(key)
	return b, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, body []byte, _ time.Duration) error {
	m.lru.Add(key, body)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *MemoryCache) Purge(_ context.Context) error {
	m.lru.Purge()
	return nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

// Len reports the number of live entries.
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}
