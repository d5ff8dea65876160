package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MemCache keeps entries in a map. It is meant for tests and single-process
// setups where persistence is not needed.
type MemCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	// Clock defaults to time.Now.
	Clock func() time.Time
}

func NewMemCache() *MemCache {
	return &MemCache{
		entries: make(map[string]CacheEntry),
		Clock:   time.Now,
	}
}

func (m *MemCache) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock()
}

func (m *MemCache) All(prefix string) ([]CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.now()
	entries := make([]CacheEntry, 0)
	for key, entry := range m.entries {
		if strings.HasPrefix(key, prefix) && !entry.Expired(now) {
			entries = append(entries, entry)
		}
	}
	// map order is random, keep results stable
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (m *MemCache) Get(key string) (CacheEntry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return CacheEntry{}, false, nil
	}
	if entry.Expired(m.now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return CacheEntry{}, false, nil
	}
	return entry, true, nil
}

func (m *MemCache) Put(entry CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.Bytes = append([]byte(nil), entry.Bytes...)
	m.entries[entry.Key] = entry
	return nil
}

func (m *MemCache) Purge(prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *MemCache) Has(key string) bool {
	_, ok, _ := m.Get(key)
	return ok
}

func (m *MemCache) Close() error {
	return nil
}
