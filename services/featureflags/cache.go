package featureflags

import (
	"container/list"
	"sync"
	"time"

	"github.com/photoproos/platform/models"
)

// cacheEntry holds one flag, or nil for a key known to be missing
type cacheEntry struct {
	key        string
	flag       *models.FeatureFlag
	insertedAt time.Time
	element    *list.Element
}

// FlagCache is an in-memory LRU cache with TTL for feature flags
type FlagCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	lruList *list.List
	maxSize int
	ttl     time.Duration
	hits    uint64
	misses  uint64
	now     func() time.Time
}

// NewFlagCache creates a FlagCache with the given capacity and TTL
func NewFlagCache(maxSize int, ttl time.Duration) *FlagCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &FlagCache{
		entries: make(map[string]*cacheEntry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached flag for key. ok is false on a miss or an expired entry;
// a hit with a nil flag means the key is known not to exist.
func (c *FlagCache) Get(key string) (flag *models.FeatureFlag, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists || c.now().Sub(entry.insertedAt) > c.ttl {
		c.misses++
		if exists {
			c.removeEntry(key)
		}
		return nil, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++
	return entry.flag, true
}

// Set stores a flag, or nil to remember a missing key
func (c *FlagCache) Set(key string, flag *models.FeatureFlag) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[key]; exists {
		entry.flag = flag
		entry.insertedAt = c.now()
		c.lruList.MoveToFront(entry.element)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	entry := &cacheEntry{key: key, flag: flag, insertedAt: c.now()}
	entry.element = c.lruList.PushFront(key)
	c.entries[key] = entry
}

// Invalidate removes one key
func (c *FlagCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeEntry(key)
}

// Clear removes all entries
func (c *FlagCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.lruList.Init()
}

// CacheStats represents cache statistics
type CacheStats struct {
	Size    int     `json:"size"`
	MaxSize int     `json:"max_size"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Stats returns cache statistics
func (c *FlagCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// must be called with lock held
func (c *FlagCache) removeEntry(key string) {
	if entry, exists := c.entries[key]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, key)
	}
}

// must be called with lock held
func (c *FlagCache) evictLRU() {
	if back := c.lruList.Back(); back != nil {
		key := back.Value.(string)
		c.lruList.Remove(back)
		delete(c.entries, key)
	}
}
