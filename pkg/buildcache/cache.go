// Package buildcache records pass/fail build outcomes keyed by derivation
// fingerprint, so a recipe already known to fail can be rejected before
// the builder shells out to Docker (or a direct runner) to reproduce the
// same failure. It is a speed optimization layered in front of
// pkg/builder, not a correctness dependency: every method degrades to a
// miss rather than an error when a level is unavailable.
package buildcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache records and looks up build outcomes by derivation fingerprint.
type Cache interface {
	// Get returns the cached Result for fingerprint, or ErrCacheMiss if
	// no level holds one.
	Get(ctx context.Context, fingerprint string) (Result, error)

	// Set records result, valid for ttl (0 uses each level's configured
	// default: L1TTL for L1, L2TTL for L2).
	Set(ctx context.Context, result Result, ttl time.Duration) error

	// Invalidate removes fingerprint from every level, e.g. after a
	// recipe or one of its dependencies changes.
	Invalidate(ctx context.Context, fingerprint string) error

	// Stats reports hit/miss counters accumulated since construction.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the L2 connection, if any.
	Close() error
}

// MultiLevelCache implements Cache with an in-process L1 and an optional
// shared Redis L2, mirroring the teacher's compiled-artifact cache.
type MultiLevelCache struct {
	config Config
	l1     *memoryCache
	l2     *redis.Client

	hits, misses, l1Hits, l2Hits int64
}

// NewCache builds a MultiLevelCache from config. A zero Config disables
// both levels and every Get is an unconditional miss.
func NewCache(ctx context.Context, config Config) (*MultiLevelCache, error) {
	c := &MultiLevelCache{config: config}

	if config.EnableL1 {
		maxEntries := config.L1MaxEntries
		if maxEntries <= 0 {
			maxEntries = DefaultConfig().L1MaxEntries
		}
		c.l1 = newMemoryCache(maxEntries, config.L1TTL)
	}

	if config.EnableL2 {
		if config.L2Addr == "" {
			return nil, fmt.Errorf("buildcache: L2 enabled but no redis address configured")
		}
		c.l2 = redis.NewClient(&redis.Options{
			Addr:     config.L2Addr,
			Password: config.L2Password,
			DB:       config.L2DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.l2.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("buildcache: connect to redis: %w", err)
		}
	}

	return c, nil
}

func (c *MultiLevelCache) key(fingerprint string) string {
	prefix := c.config.L2KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().L2KeyPrefix
	}
	return prefix + fingerprint
}

// Get implements Cache.
func (c *MultiLevelCache) Get(ctx context.Context, fingerprint string) (Result, error) {
	key := c.key(fingerprint)

	if c.l1 != nil {
		if result, ok := c.l1.get(key); ok {
			atomic.AddInt64(&c.hits, 1)
			atomic.AddInt64(&c.l1Hits, 1)
			return result, nil
		}
	}

	if c.l2 != nil {
		data, err := c.l2.Get(ctx, key).Bytes()
		if err == nil {
			var result Result
			if jerr := json.Unmarshal(data, &result); jerr == nil {
				atomic.AddInt64(&c.hits, 1)
				atomic.AddInt64(&c.l2Hits, 1)
				if c.l1 != nil {
					c.l1.set(key, result, c.config.L1TTL)
				}
				return result, nil
			}
		} else if err != redis.Nil {
			atomic.AddInt64(&c.misses, 1)
			return Result{}, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
	}

	atomic.AddInt64(&c.misses, 1)
	return Result{}, ErrCacheMiss
}

// Set implements Cache.
func (c *MultiLevelCache) Set(ctx context.Context, result Result, ttl time.Duration) error {
	if result.Fingerprint == "" {
		return fmt.Errorf("buildcache: result has no fingerprint")
	}
	if result.CachedAt.IsZero() {
		result.CachedAt = time.Now()
	}
	key := c.key(result.Fingerprint)

	if c.l1 != nil {
		l1ttl := ttl
		if l1ttl == 0 {
			l1ttl = c.config.L1TTL
		}
		c.l1.set(key, result, l1ttl)
	}

	if c.l2 != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("buildcache: marshal result: %w", err)
		}
		l2ttl := ttl
		if l2ttl == 0 {
			l2ttl = c.config.L2TTL
		}
		if err := c.l2.Set(ctx, key, data, l2ttl).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
	}

	return nil
}

// Invalidate implements Cache.
func (c *MultiLevelCache) Invalidate(ctx context.Context, fingerprint string) error {
	key := c.key(fingerprint)

	if c.l1 != nil {
		c.l1.delete(key)
	}
	if c.l2 != nil {
		if err := c.l2.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
	}
	return nil
}

// Stats implements Cache.
func (c *MultiLevelCache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		L1Hits: atomic.LoadInt64(&c.l1Hits),
		L2Hits: atomic.LoadInt64(&c.l2Hits),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	if c.l1 != nil {
		stats.ItemCount = int64(c.l1.size())
	}
	return stats, nil
}

// Close implements Cache.
func (c *MultiLevelCache) Close() error {
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
