package recurrence

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tshepom/upcoming/calendar"
)

// expansionCache memoizes Expand results. Entries expire after a TTL and the
// least recently accessed ones are evicted when the cache grows past its
// limit. Slot slices are copied on the way in and out so cached results stay
// immutable.
type expansionCache struct {
	mu          sync.RWMutex
	entries     map[string]*cacheEntry
	ttl         time.Duration
	maxEntries  int
	stopCleanup chan struct{}
}

type cacheEntry struct {
	slots      []Slot
	expiresAt  time.Time
	accessedAt time.Time
}

func newExpansionCache(config CacheConfig) *expansionCache {
	c := &expansionCache{
		entries:     make(map[string]*cacheEntry),
		ttl:         config.TTL,
		maxEntries:  config.MaxEntries,
		stopCleanup: make(chan struct{}),
	}
	interval := config.CleanupInterval
	if interval <= 0 {
		interval = DefaultCacheConfig.CleanupInterval
	}
	go c.cleanupLoop(interval)
	return c
}

// cacheKey hashes every input that influences expansion.
func cacheKey(start, end time.Time, spec *calendar.RecurrenceSpec, window calendar.DateRange) string {
	hasher := sha256.New()
	hasher.Write([]byte(start.Format(time.RFC3339Nano)))
	hasher.Write([]byte(end.Format(time.RFC3339Nano)))
	hasher.Write([]byte(window.From.Format(time.RFC3339Nano)))
	hasher.Write([]byte(window.To.Format(time.RFC3339Nano)))
	if raw, err := json.Marshal(spec); err == nil {
		hasher.Write(raw)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func (c *expansionCache) get(start, end time.Time, spec *calendar.RecurrenceSpec, window calendar.DateRange) ([]Slot, bool) {
	key := cacheKey(start, end, spec, window)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	entry.accessedAt = now
	slots := make([]Slot, len(entry.slots))
	copy(slots, entry.slots)
	c.mu.Unlock()
	return slots, true
}

func (c *expansionCache) set(start, end time.Time, spec *calendar.RecurrenceSpec, window calendar.DateRange, slots []Slot) {
	key := cacheKey(start, end, spec, window)
	now := time.Now()

	stored := make([]Slot, len(slots))
	copy(stored, slots)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{
		slots:      stored,
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}
	if len(c.entries) > c.maxEntries {
		c.evict(now)
	}
}

// evict removes expired entries, then the least recently accessed entries
// until the cache fits maxEntries again. Callers hold the write lock.
func (c *expansionCache) evict(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.maxEntries {
		return
	}

	type keyAccess struct {
		key        string
		accessedAt time.Time
	}
	byAge := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		byAge = append(byAge, keyAccess{key: key, accessedAt: entry.accessedAt})
	}
	sort.Slice(byAge, func(i, j int) bool {
		return byAge[i].accessedAt.Before(byAge[j].accessedAt)
	})
	for i := 0; i < len(byAge) && len(c.entries) > c.maxEntries; i++ {
		delete(c.entries, byAge[i].key)
	}
}

func (c *expansionCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.evict(time.Now())
			c.mu.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and drops all entries.
func (c *expansionCache) Close() {
	close(c.stopCleanup)
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}
