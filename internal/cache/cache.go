// Package cache stores built briefings by their deterministic ID.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
)

// BriefingCache stores briefings by briefing ID. Because IDs are derived from
// coordinator, date and the full ranked input, a hit is the payload a rebuild
// would produce under the same catalog. Callers Clear the cache when the
// catalog changes.
type BriefingCache interface {
	Get(ctx context.Context, id string) (adm.Briefing, bool, error)
	Set(ctx context.Context, b adm.Briefing) error
	Clear(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	CurrentSize int   `json:"current_size"`
}

type counters struct {
	hits, misses, sets, evictions atomic.Int64
}

func (c *counters) snapshot(size int) Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

type entry struct {
	value      adm.Briefing
	expiration time.Time
}

// MemoryCache is an in-process BriefingCache with TTL expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	stats   counters

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryCache creates a cache whose entries live for ttl. A positive
// cleanupInterval starts a janitor goroutine; Close stops it.
func NewMemoryCache(ttl, cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, id string) (adm.Briefing, bool, error) {
	c.mu.RLock()
	e, found := c.entries[id]
	c.mu.RUnlock()

	if !found || c.now().After(e.expiration) {
		c.stats.misses.Add(1)
		return adm.Briefing{}, false, nil
	}
	c.stats.hits.Add(1)
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, b adm.Briefing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[b.ID] = entry{value: b, expiration: c.now().Add(c.ttl)}
	c.stats.sets.Add(1)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	return nil
}

func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.snapshot(len(c.entries))
}

// deleteExpired removes expired entries and returns how many were removed.
func (c *MemoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if now.After(e.expiration) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.evictions.Add(int64(count))
	return count
}

func (c *MemoryCache) janitor(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

// Close stops the janitor. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
	return nil
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (adm.Briefing, bool, error) {
	return adm.Briefing{}, false, nil
}
func (NopCache) Set(context.Context, adm.Briefing) error { return nil }
func (NopCache) Clear(context.Context) error             { return nil }
func (NopCache) Stats() Stats                            { return Stats{} }
func (NopCache) Close() error                            { return nil }
