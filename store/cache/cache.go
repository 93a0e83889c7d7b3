package cache

import (
	"sort"
	"sync"
	"time"
)

// Config configures a SizedCache.
type Config struct {
	TTL      time.Duration // Lifetime of every entry (default: 1 hour)
	MaxBytes int64         // Total size budget (default: 100 MiB)
	Sizer    Sizer         // Payload size estimator (default: JSONSizer)
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:      time.Hour,
		MaxBytes: 100 * 1024 * 1024,
		Sizer:    JSONSizer{},
	}
}

// SizedCache is an in-memory cache bounded by total payload size rather
// than entry count. When a write would exceed the budget, entries are
// evicted in ascending expiration order (oldest-expiring first) until
// enough bytes are freed. Expiration order approximates LRU here since
// every entry carries the same TTL; it is the intended policy, not a
// stand-in for access-time tracking.
type SizedCache struct {
	mu sync.Mutex

	ttl      time.Duration
	maxBytes int64
	sizer    Sizer

	entries      map[string]*entry
	currentBytes int64
}

type entry struct {
	value     any
	expiresAt time.Time
	sizeBytes int64
}

// New creates a new SizedCache.
func New(cfg Config) *SizedCache {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 100 * 1024 * 1024
	}
	if cfg.Sizer == nil {
		cfg.Sizer = JSONSizer{}
	}
	// TTL is deliberately not validated: a non-positive TTL produces
	// entries that expire on their first read, which callers may use
	// to effectively disable reuse without swapping the Store.

	return &SizedCache{
		ttl:      cfg.TTL,
		maxBytes: cfg.MaxBytes,
		sizer:    cfg.Sizer,
		entries:  make(map[string]*entry),
	}
}

// Get retrieves a value. An expired entry is removed lazily and
// reported as absent. Reads do not extend expiration.
func (c *SizedCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.removeLocked(key, e)
		return nil, false
	}

	return e.value, true
}

// Set inserts or overwrites a value, evicting oldest-expiring entries
// first if the write would push the total past the budget. A single
// payload larger than the whole budget empties the cache and is still
// stored; the cache then legitimately exceeds MaxBytes by that one
// entry's overage until it expires or is overwritten.
func (c *SizedCache) Set(key string, value any) bool {
	newSize := int64(c.sizer.Size(value))

	c.mu.Lock()
	defer c.mu.Unlock()

	if projected := c.currentBytes + c.sizeDiffLocked(key, newSize); projected > c.maxBytes {
		c.evictLocked(projected - c.maxBytes)
	}

	// Eviction may have removed the acting key itself, so the diff is
	// recomputed against the post-eviction baseline.
	c.currentBytes += c.sizeDiffLocked(key, newSize)
	c.entries[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
		sizeBytes: newSize,
	}

	return true
}

// Len returns the number of live entries.
func (c *SizedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CurrentBytes returns the accounted size of all live entries.
func (c *SizedCache) CurrentBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentBytes
}

// MaxBytes returns the configured size budget.
func (c *SizedCache) MaxBytes() int64 {
	return c.maxBytes
}

// sizeDiffLocked returns how much currentBytes changes if key is
// written at newSize. Must be called with the lock held.
func (c *SizedCache) sizeDiffLocked(key string, newSize int64) int64 {
	if old, ok := c.entries[key]; ok {
		return newSize - old.sizeBytes
	}
	return newSize
}

// evictLocked removes entries in ascending expiration order until at
// least target bytes are freed or the cache is empty. Must be called
// with the lock held.
func (c *SizedCache) evictLocked(target int64) {
	type victim struct {
		key string
		e   *entry
	}

	victims := make([]victim, 0, len(c.entries))
	for k, e := range c.entries {
		victims = append(victims, victim{key: k, e: e})
	}
	sort.Slice(victims, func(i, j int) bool {
		return victims[i].e.expiresAt.Before(victims[j].e.expiresAt)
	})

	var freed int64
	for _, v := range victims {
		if freed >= target {
			break
		}
		freed += v.e.sizeBytes
		c.removeLocked(v.key, v.e)
	}
}

// removeLocked deletes an entry and updates the size accounting.
// Must be called with the lock held.
func (c *SizedCache) removeLocked(key string, e *entry) {
	c.currentBytes -= e.sizeBytes
	delete(c.entries, key)
}

// Ensure SizedCache implements Store
var _ Store = (*SizedCache)(nil)
