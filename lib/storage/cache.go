package storage

import (
	"github.com/besnikbelegu/rustbase/lib/query"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
)

// defaultCacheSize bounds the cache when no size is configured
const defaultCacheSize = 4096

// backendCache is the read-through cache in front of the namespaces. Get
// consults it first; every write path updates or invalidates it. The cache
// only bounds memory: when full, an arbitrary entry is dropped. The eviction
// policy is deliberately not part of the backend contract.
//
// Thread-safety: all methods are safe for concurrent use.
type backendCache struct {
	entries    *xsync.MapOf[string, query.Value]
	maxEntries int

	hits   gometrics.Meter
	misses gometrics.Meter
}

// newBackendCache creates a cache holding at most maxEntries values. Hit and
// miss meters are registered with the given registry.
func newBackendCache(maxEntries int, registry gometrics.Registry) *backendCache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheSize
	}
	return &backendCache{
		entries:    xsync.NewMapOf[string, query.Value](),
		maxEntries: maxEntries,
		hits:       gometrics.NewRegisteredMeter("cache.hits", registry),
		misses:     gometrics.NewRegisteredMeter("cache.misses", registry),
	}
}

// get returns the cached value for a namespaced key.
func (c *backendCache) get(key string) (query.Value, bool) {
	value, ok := c.entries.Load(key)
	if ok {
		c.hits.Mark(1)
	} else {
		c.misses.Mark(1)
	}
	return value, ok
}

// put stores a value, dropping an arbitrary entry first if the cache is full.
func (c *backendCache) put(key string, value query.Value) {
	if c.entries.Size() >= c.maxEntries {
		c.entries.Range(func(victim string, _ query.Value) bool {
			c.entries.Delete(victim)
			return false
		})
	}
	c.entries.Store(key, value)
}

// invalidate removes a key from the cache.
func (c *backendCache) invalidate(key string) {
	c.entries.Delete(key)
}

// stats returns the cumulative hit and miss counts.
func (c *backendCache) stats() (hits, misses int64) {
	return c.hits.Count(), c.misses.Count()
}
