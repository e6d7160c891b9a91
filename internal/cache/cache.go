package cache

import (
	"sync"
	"time"

	"github.com/academiagorila/bjj-schedule/internal/logger"
)

// TTL is a concurrency-safe cache keyed by comparable argument tuples.
//
// Concurrent misses on the same key may each run the compute function; the
// last one to finish wins. That is acceptable because values are immutable
// snapshots of upstream data.
type TTL[K comparable, V any] struct {
	name       string
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[K]entry[V]
	seq     uint64
}

type entry[V any] struct {
	value    V
	storedAt time.Time
	seq      uint64 // insertion order, for evicting the oldest entry
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a cache holding up to maxEntries values for ttl each.
// name prefixes the hit/miss metrics.
func New[K comparable, V any](name string, maxEntries int, ttl time.Duration, opts ...Option) *TTL[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &TTL[K, V]{
		name:       name,
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        o.now,
		entries:    make(map[K]entry[V]),
	}
}

// Get returns the value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(e, c.now()) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting expired entries and then the oldest
// entry if the cache is full.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.cleanLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	c.seq++
	c.entries[key] = entry[V]{value: value, storedAt: now, seq: c.seq}
	logger.SetGauge("cache."+c.name+".size", float64(len(c.entries)))
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result. Errors from compute are returned as-is and never cached.
func (c *TTL[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		logger.IncrCounter("cache." + c.name + ".hit")
		return v, nil
	}
	logger.IncrCounter("cache." + c.name + ".miss")

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// CleanExpired removes expired entries and returns how many were removed.
func (c *TTL[K, V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.cleanLocked(c.now())
	logger.SetGauge("cache."+c.name+".size", float64(len(c.entries)))
	return removed
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Name returns the cache name used in metrics.
func (c *TTL[K, V]) Name() string {
	return c.name
}

func (c *TTL[K, V]) expired(e entry[V], now time.Time) bool {
	return now.Sub(e.storedAt) >= c.ttl
}

func (c *TTL[K, V]) cleanLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *TTL[K, V]) evictOldestLocked() {
	var (
		oldestKey K
		oldestSeq uint64
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.seq < oldestSeq {
			oldestKey, oldestSeq, found = k, e.seq, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
