package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/skycast/internal/weather"
)

// MemoryKV is a concurrency-safe in-memory weather.KeyValueStore.
type MemoryKV struct {
	mu sync.RWMutex

	// key: profile, value: records by key
	data map[string]map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]map[string][]byte)}
}

func (s *MemoryKV) Get(_ context.Context, profile, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[profile][key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryKV) Put(_ context.Context, profile, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.data[profile]
	if !ok {
		records = make(map[string][]byte)
		s.data[profile] = records
	}
	v := make([]byte, len(value))
	copy(v, value)
	records[key] = v
	return nil
}

type cacheEntry struct {
	snapshot weather.Snapshot
	storedAt time.Time
}

// MemoryCache is a concurrency-safe in-memory weather.SnapshotCache.
type MemoryCache struct {
	mu sync.RWMutex

	data map[string]cacheEntry

	// retention configuration
	maxEntries int           // max number of cached locations
	ttl        time.Duration // entries older than this are misses
	now        func() time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries snapshots for ttl.
// If maxEntries is <= 0, it is treated as unlimited; a ttl <= 0 means
// weather.CacheTTL.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = weather.CacheTTL
	}
	return &MemoryCache{
		data:       make(map[string]cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (weather.Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return weather.Snapshot{}, false, nil
	}
	return e.snapshot, true, nil
}

// Set stores snapshot under key, evicting expired entries and then the oldest
// ones while the cache is over capacity.
func (c *MemoryCache) Set(_ context.Context, key string, snapshot weather.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.data[key] = cacheEntry{snapshot: snapshot, storedAt: now}

	for k, e := range c.data {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.data, k)
		}
	}

	for c.maxEntries > 0 && len(c.data) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.data {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey, oldest = k, e.storedAt
			}
		}
		delete(c.data, oldestKey)
	}
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
