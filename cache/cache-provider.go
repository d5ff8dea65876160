// Package cache contains the storage providers for serialized responses.
package cache

import (
	"time"
)

// CacheProvider is an interface for a cache provider.
// It stores and retrieves []byte values, which represent HTTP responses.
// It also keeps track of expiration times of cache entries.
// Operating on specific keys or origin-specific prefixes is very important
// in order for many origins to be able to be stored in the same cache.
//
// Implementations must be thread-safe!
type CacheProvider interface {
	// All returns all live cache entries that have the specific key prefix.
	All(prefix string) ([]CacheEntry, error)
	// Get returns the cached entry for the given key, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	// If the cache entry has expired, the boolean is false.
	Get(key string) (CacheEntry, bool, error)
	// Put stores the given entry, replacing any entry with the same key.
	Put(entry CacheEntry) error
	// Purge removes all entries whose key starts with prefix.
	// A full key purges that single entry.
	Purge(prefix string) error
	// Has checks if the specified key exists in the cache.
	Has(key string) bool
	Close() error
}

type CacheEntry struct {
	Key string
	// Expires is the time after which the entry is not returned anymore.
	// The zero time means the entry does not expire.
	Expires time.Time
	Bytes   []byte
}

// Expired reports whether the entry has expired at the given time.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}
