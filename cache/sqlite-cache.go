package cache

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

type SQLiteCache struct {
	db         *sql.DB
	writeMutex *sync.Mutex
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewSQLiteCache creates a new cache with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteCache(filename string) (SQLiteCache, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteCache{}, fmt.Errorf("open %s: %w", filename, err)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			expires INTEGER,
			bytes BLOB
		)`,
		"CREATE INDEX IF NOT EXISTS expires_idx ON cache (expires)",
		"PRAGMA journal_mode=WAL",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return SQLiteCache{}, fmt.Errorf("init %s: %w", filename, err)
		}
	}
	return SQLiteCache{
		db:         db,
		writeMutex: &sync.Mutex{},
		Clock:      time.Now,
	}, nil
}

func (s SQLiteCache) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

// expires are stored as unix nanoseconds, with 0 meaning no expiry
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// prefixes are matched with substr instead of LIKE, as keys contain URLs
// which may contain the LIKE wildcards
const prefixMatch = "substr(key, 1, length(?)) = ?"

func (s SQLiteCache) All(prefix string) ([]CacheEntry, error) {
	entries := make([]CacheEntry, 0)
	rows, err := s.db.Query(`SELECT key, expires, bytes FROM cache
		WHERE `+prefixMatch+` AND (expires = 0 OR expires > ?)
		ORDER BY key`, prefix, prefix, s.now().UnixNano())
	if err != nil {
		return entries, err
	}
	defer rows.Close()
	for rows.Next() {
		var entry CacheEntry
		var exp int64
		if err := rows.Scan(&entry.Key, &exp, &entry.Bytes); err != nil {
			return entries, err
		}
		entry.Expires = fromUnix(exp)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s SQLiteCache) Get(key string) (CacheEntry, bool, error) {
	entry := CacheEntry{Key: key}
	var expires int64
	err := s.db.QueryRow("SELECT expires, bytes FROM cache WHERE key = ?", key).Scan(&expires, &entry.Bytes)
	if err == sql.ErrNoRows {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, err
	}
	entry.Expires = fromUnix(expires)
	if entry.Expired(s.now()) {
		return CacheEntry{}, false, nil
	}
	return entry, true, nil
}

func (s SQLiteCache) Put(entry CacheEntry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("INSERT OR REPLACE INTO cache (key, expires, bytes) VALUES (?, ?, ?)",
		entry.Key, toUnix(entry.Expires), entry.Bytes)
	return err
}

func (s SQLiteCache) Purge(prefix string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM cache WHERE "+prefixMatch, prefix, prefix)
	return err
}

// PurgeExpired removes all entries that have expired.
func (s SQLiteCache) PurgeExpired() error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM cache WHERE expires > 0 AND expires <= ?", s.now().UnixNano())
	return err
}

func (s SQLiteCache) Has(key string) bool {
	_, ok, err := s.Get(key)
	return ok && err == nil
}

func (s SQLiteCache) Close() error {
	return s.db.Close()
}
