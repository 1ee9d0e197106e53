package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
	"github.com/EdgesSeeker/ma-monitor/pkg/redis"
)

// SnapshotCache stores recent snapshots keyed by symbol + period.
// Get only returns entries inside the freshness window; GetStale
// returns whatever is held regardless of age so the gateway can fall
// back to old data when providers are down.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (Snapshot, bool)
	GetStale(ctx context.Context, key string) (Snapshot, bool)
	Put(ctx context.Context, key string, snap Snapshot)
}

// MemoryCache is the default in-process snapshot cache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Snapshot
	ttl     time.Duration
}

// NewMemoryCache creates a memory cache with the given freshness window
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]Snapshot),
		ttl:     ttl,
	}
}

// Get returns the entry if it is still fresh
func (c *MemoryCache) Get(ctx context.Context, key string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.entries[key]
	if !ok || time.Since(snap.FetchedAt) > c.ttl {
		return Snapshot{}, false
	}
	return snap, true
}

// GetStale returns the entry regardless of age
func (c *MemoryCache) GetStale(ctx context.Context, key string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.entries[key]
	return snap, ok
}

// Put stores a snapshot, keeping the newer of the two on conflict
func (c *MemoryCache) Put(ctx context.Context, key string, snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok && existing.FetchedAt.After(snap.FetchedAt) {
		return
	}
	c.entries[key] = snap
}

// Len returns the number of held entries
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache shares snapshots between instances through Redis. Two
// keys exist per snapshot: a short-lived one honoring the freshness
// window and a long-lived copy serving the stale tier.
type RedisCache struct {
	cache    *redis.Cache
	ttl      time.Duration
	staleTTL time.Duration
	logger   *logger.Logger
}

// NewRedisCache creates a Redis-backed snapshot cache
func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{
		cache:    redis.NewCache(client, "snapshot"),
		ttl:      ttl,
		staleTTL: 24 * time.Hour,
		logger:   log,
	}
}

// Get returns the fresh copy if Redis still holds one
func (c *RedisCache) Get(ctx context.Context, key string) (Snapshot, bool) {
	var snap Snapshot
	found, err := c.cache.Get(ctx, "fresh:"+key, &snap)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Snapshot cache read failed")
		return Snapshot{}, false
	}
	return snap, found
}

// GetStale returns the long-retention copy
func (c *RedisCache) GetStale(ctx context.Context, key string) (Snapshot, bool) {
	var snap Snapshot
	found, err := c.cache.Get(ctx, "stale:"+key, &snap)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Snapshot cache read failed")
		return Snapshot{}, false
	}
	return snap, found
}

// Put writes both copies. Failures are logged, not returned; a cache
// write must never fail a check pass.
func (c *RedisCache) Put(ctx context.Context, key string, snap Snapshot) {
	if err := c.cache.Set(ctx, "fresh:"+key, snap, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Snapshot cache write failed")
		return
	}
	if err := c.cache.Set(ctx, "stale:"+key, snap, c.staleTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Snapshot cache write failed")
	}
}
