package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vancetran/medisupply-backend/pkg/config"
	"github.com/vancetran/medisupply-backend/pkg/logger"
)

// redisStore is the slice of the redis client the cache needs.
type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
	CacheKey(parts ...string) string
	TagKey(tag string) string
}

type nilChecker func(error) bool

// Store is the advisory read-through cache: TTL get/set plus tag-based bulk
// invalidation. Never the system of record.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration, tags ...string)
	Delete(ctx context.Context, keys ...string)
	InvalidateByTags(ctx context.Context, tags ...string)
}

// Cache is Redis-backed with a silent in-process fallback when Redis is
// unavailable. The fallback is per-instance and not shared across deployments.
type Cache struct {
	redis      redisStore
	isNil      nilChecker
	memory     *memoryStore
	defaultTTL time.Duration
	logg       *logger.Logger

	degraded   bool
	degradedMu sync.Mutex

	stopSweep chan struct{}
	stopOnce  sync.Once
}

// New builds the cache. A nil redis store degrades to memory immediately.
func New(redis redisStore, isNil nilChecker, cfg config.CacheConfig, logg *logger.Logger) *Cache {
	c := &Cache{
		redis:      redis,
		isNil:      isNil,
		memory:     newMemoryStore(),
		defaultTTL: cfg.DefaultTTL,
		logg:       logg,
		stopSweep:  make(chan struct{}),
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go c.sweepLoop(interval)
	return c
}

// Close stops the fallback sweep loop.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stopSweep) })
}

func (c *Cache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopSweep:
			return
		case now := <-ticker.C:
			c.memory.sweep(now)
		}
	}
}

// Get returns the cached value for key, reporting whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c.redis != nil {
		value, err := c.redis.Get(ctx, c.redis.CacheKey(key))
		if err == nil {
			return value, true
		}
		if c.isNil != nil && c.isNil(err) {
			return "", false
		}
		c.markDegraded(ctx, err)
	}
	return c.memory.get(key, time.Now())
}

// Set stores value under key with the provided TTL (default TTL when zero) and
// registers the key under each tag for bulk invalidation.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if c.redis != nil {
		namespaced := c.redis.CacheKey(key)
		err := c.redis.Set(ctx, namespaced, value, ttl)
		if err == nil {
			for _, tag := range tags {
				if tagErr := c.redis.SAdd(ctx, c.redis.TagKey(tag), namespaced); tagErr != nil {
					c.markDegraded(ctx, tagErr)
					break
				}
			}
			return
		}
		c.markDegraded(ctx, err)
	}
	c.memory.set(key, value, ttl, tags, time.Now())
}

// Delete removes the provided keys from the cache.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c.redis != nil {
		namespaced := make([]string, 0, len(keys))
		for _, key := range keys {
			namespaced = append(namespaced, c.redis.CacheKey(key))
		}
		if err := c.redis.Del(ctx, namespaced...); err != nil {
			c.markDegraded(ctx, err)
		}
	}
	c.memory.delete(keys...)
}

// InvalidateByTags drops every key registered under each tag.
func (c *Cache) InvalidateByTags(ctx context.Context, tags ...string) {
	if c.redis != nil {
		for _, tag := range tags {
			tagKey := c.redis.TagKey(tag)
			members, err := c.redis.SMembers(ctx, tagKey)
			if err != nil {
				c.markDegraded(ctx, err)
				break
			}
			if len(members) > 0 {
				if err := c.redis.Del(ctx, members...); err != nil {
					c.markDegraded(ctx, err)
					break
				}
			}
			if err := c.redis.Del(ctx, tagKey); err != nil {
				c.markDegraded(ctx, err)
				break
			}
		}
	}
	c.memory.invalidateTags(tags)
}

func (c *Cache) markDegraded(ctx context.Context, err error) {
	c.degradedMu.Lock()
	first := !c.degraded
	c.degraded = true
	c.degradedMu.Unlock()
	if first && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "cache_error", err.Error()), "cache degraded to in-process store")
	}
}
