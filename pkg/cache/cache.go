// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package cache implements the in-process TTL+LRU cache backing query
// results. Concurrent misses on the same key collapse to one computation;
// stale entries are removed on read; a background sweeper reclaims expired
// entries between reads.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	ulog "github.com/elastic/storefront-search/pkg/utils/log"
	"github.com/elastic/storefront-search/pkg/utils/metrics"
)

const (
	// DefaultSweepInterval is how often the background sweeper removes
	// expired entries.
	DefaultSweepInterval = 60 * time.Second
	// DefaultMaxSize bounds the number of entries per cache before LRU
	// eviction kicks in.
	DefaultMaxSize = 1000
)

// disabled is the process-wide kill switch. When set, Get always misses and
// Set is a no-op; every request goes straight to the backing store.
var disabled atomic.Bool

// SetDisabled toggles caching for the whole process.
func SetDisabled(v bool) {
	disabled.Store(v)
}

// Disabled reports whether caching is disabled process-wide.
func Disabled() bool {
	return disabled.Load()
}

// Entry is a stored value with its bookkeeping. Owned by the cache; callers
// only ever see the value.
type Entry struct {
	Value        any
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastAccessed time.Time
	AccessCount  int64
}

func (e *Entry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Size        int
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
}

// Options configures a cache instance.
type Options struct {
	// Name identifies the cache in logs and metrics.
	Name string
	// TTL applied to every entry on Set.
	TTL time.Duration
	// MaxSize caps the entry count; 0 means DefaultMaxSize.
	MaxSize int
	// SweepInterval for the background sweeper; 0 means DefaultSweepInterval.
	SweepInterval time.Duration
}

// Cache is a TTL+LRU cache safe for concurrent use.
type Cache struct {
	name    string
	ttl     time.Duration
	maxSize int

	mu      sync.Mutex
	entries map[string]*Entry

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64

	group singleflight.Group

	stopOnce sync.Once
	stopChan chan struct{}
	log      *zap.Logger
}

// New creates a cache and starts its background sweeper. Call Stop before
// process exit to release the sweeper.
func New(opts Options) *Cache {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	c := &Cache{
		name:     opts.Name,
		ttl:      opts.TTL,
		maxSize:  opts.MaxSize,
		entries:  map[string]*Entry{},
		stopChan: make(chan struct{}),
		log:      ulog.Named("cache").With(zap.String("cache", opts.Name)),
	}
	go c.sweepPeriodically(opts.SweepInterval)
	return c
}

// Get returns the cached value for key. Expired entries are removed and
// reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	if Disabled() {
		return nil, false
	}
	now := time.Now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && entry.expired(now) {
		delete(c.entries, key)
		c.expirations.Add(1)
		metrics.CacheExpirations.WithLabelValues(c.name).Inc()
		ok = false
	}
	if ok {
		entry.LastAccessed = now
		entry.AccessCount++
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return nil, false
	}
	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return entry.Value, true
}

// Set stores the value under key with the cache TTL, evicting the
// least-recently-accessed entry when the cache is full.
func (c *Cache) Set(key string, value any) {
	if Disabled() {
		return
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLRULocked()
	}
	c.entries[key] = &Entry{
		Value:        value,
		CreatedAt:    now,
		ExpiresAt:    now.Add(c.ttl),
		LastAccessed: now,
	}
}

// evictLRULocked removes the entry with the smallest lastAccessed timestamp.
func (c *Cache) evictLRULocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if oldestKey == "" || entry.LastAccessed.Before(oldest) {
			oldestKey = key
			oldest = entry.LastAccessed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions.Add(1)
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
}

// Delete removes the entry for key, reporting whether one was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Keys returns the keys of all unexpired entries.
func (c *Cache) Keys() []string {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for key, entry := range c.entries {
		if entry.expired(now) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// InvalidateByPattern deletes entries whose key matches the pattern. A
// trailing '*' matches any suffix; anything else is an exact key. Returns the
// number of entries removed.
func (c *Cache) InvalidateByPattern(pattern string) int {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		c.mu.Lock()
		defer c.mu.Unlock()
		removed := 0
		for key := range c.entries {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
				removed++
			}
		}
		return removed
	}
	if c.Delete(pattern) {
		return 1
	}
	return 0
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Concurrent callers for the same in-flight key wait on one
// computation and all see the same outcome. A cancelled waiter abandons the
// wait without cancelling the computation, which still fills the cache for
// future callers.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (any, error)) (any, error) {
	if Disabled() {
		return compute(ctx)
	}
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		value, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.Set(key, value)
		return value, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the current entry count, expired entries included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Size:        size,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
	}
}

// Stop terminates the background sweeper. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

func (c *Cache) sweepPeriodically(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()
	if removed > 0 {
		c.expirations.Add(int64(removed))
		metrics.CacheExpirations.WithLabelValues(c.name).Add(float64(removed))
		c.log.Debug("swept expired entries", zap.Int("removed", removed))
	}
}
