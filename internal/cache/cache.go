package cache

import (
	"sync"
	"time"
)

// Observer receives cache hit/miss and eviction events.
type Observer interface {
	RecordCacheLookup(cache string, hit bool)
	RecordCacheEviction(cache string, count int)
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is an in-memory keyed store whose entries are valid while
// now-storedAt < ttl. Expired entries read as misses and are removed by Sweep
// or when the entry cap is reached.
type TTL[V any] struct {
	name       string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	observer   Observer

	mu      sync.Mutex
	entries map[string]entry[V]
}

// Option customizes a TTL cache.
type Option func(*options)

type options struct {
	maxEntries int
	now        func() time.Time
	observer   Observer
}

// WithMaxEntries caps the number of stored keys. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithObserver reports lookups and evictions.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// New constructs an empty cache.
func New[V any](name string, ttl time.Duration, opts ...Option) *TTL[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTL[V]{
		name:       name,
		ttl:        ttl,
		maxEntries: o.maxEntries,
		now:        o.now,
		observer:   o.observer,
		entries:    make(map[string]entry[V]),
	}
}

// Name returns the label used in logs and metrics.
func (c *TTL[V]) Name() string {
	return c.name
}

// TTL returns the validity window of an entry.
func (c *TTL[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the stored value when it is still fresh.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()

	hit := ok && c.fresh(e, c.now())
	if c.observer != nil {
		c.observer.RecordCacheLookup(c.name, hit)
	}
	if !hit {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key with the current time, replacing any previous
// entry.
func (c *TTL[V]) Put(key string, value V) {
	now := c.now()
	evicted := 0

	c.mu.Lock()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		evicted = c.removeExpiredLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.removeOldestLocked()
			evicted++
		}
	}
	c.entries[key] = entry[V]{value: value, storedAt: now}
	c.mu.Unlock()

	c.reportEvictions(evicted)
}

// Sweep removes expired entries and returns how many were dropped.
func (c *TTL[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	removed := c.removeExpiredLocked(now)
	c.mu.Unlock()

	c.reportEvictions(removed)
	return removed
}

// Len returns the number of stored entries, fresh or not.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[V]) fresh(e entry[V], now time.Time) bool {
	return now.Sub(e.storedAt) < c.ttl
}

func (c *TTL[V]) removeExpiredLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if !c.fresh(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *TTL[V]) removeOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.storedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

func (c *TTL[V]) reportEvictions(n int) {
	if n > 0 && c.observer != nil {
		c.observer.RecordCacheEviction(c.name, n)
	}
}
