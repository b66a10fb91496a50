package analyzer

import (
	"sort"
	"sync"
	"time"
)

// Cache is the report cache collaborator consumed by the Analyzer.
type Cache interface {
	Get(key string) (*Report, bool)
	Set(key string, report *Report)
}

type cacheEntry struct {
	report    *Report
	timestamp time.Time
}

// MemoryCache is a TTL- and size-bounded in-memory report cache. Entries
// older than the TTL are treated as absent. When the entry count exceeds the
// maximum, the oldest entries are evicted first.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	hits       int64
	misses     int64
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryCache creates a MemoryCache and starts its periodic cleanup
// goroutine. Call Stop to release it.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	c := &MemoryCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go c.periodicCleanup(5 * time.Minute)
	return c
}

// Get returns a live cached report, counting hits and misses.
func (c *MemoryCache) Get(key string) (*Report, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if found && time.Since(entry.timestamp) < c.ttl {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.report, true
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return nil, false
}

// Set stores a report, evicting the oldest entries when over capacity.
// Last write wins for concurrent analyses of the same URL.
func (c *MemoryCache) Set(key string, report *Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{report: report, timestamp: time.Now()}
	if len(c.entries) > c.maxEntries {
		c.evictOldestLocked(len(c.entries) - c.maxEntries)
	}
}

// Len reports the current number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the cumulative hit and miss counters.
func (c *MemoryCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Stop terminates the cleanup goroutine.
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *MemoryCache) periodicCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) cleanup() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.entries, key)
		}
	}
	if len(c.entries) > c.maxEntries {
		c.evictOldestLocked(len(c.entries) - c.maxEntries)
	}
}

// evictOldestLocked removes n entries in timestamp order. Caller holds mu.
func (c *MemoryCache) evictOldestLocked(n int) {
	type aged struct {
		key       string
		timestamp time.Time
	}

	entries := make([]aged, 0, len(c.entries))
	for key, entry := range c.entries {
		entries = append(entries, aged{key, entry.timestamp})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})

	for i := 0; i < n && i < len(entries); i++ {
		delete(c.entries, entries[i].key)
	}
}
