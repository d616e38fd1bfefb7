// Package cache keeps TourAPI responses in an in-process layer backed by Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourkorea/explorer/internal/metrics"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Cache interface {
	// Get decodes the cached value for key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type layeredCache struct {
	local       *gocache.Cache
	redisClient *redis.Client
	keyPrefix   string
}

// NewLayeredCache builds the two-level cache. redisClient may be nil, in which case only the local layer is used.
func NewLayeredCache(redisClient *redis.Client, cleanupInterval time.Duration) Cache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	return &layeredCache{
		local:       gocache.New(gocache.NoExpiration, cleanupInterval),
		redisClient: redisClient,
		keyPrefix:   "tourkorea:cache:",
	}
}

func (c *layeredCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if raw, ok := c.local.Get(key); ok {
		metrics.CacheHits.WithLabelValues("local").Inc()
		return true, decode(raw.([]byte), dest)
	}

	if c.redisClient == nil {
		metrics.CacheMisses.Inc()
		return false, nil
	}

	raw, err := c.redisClient.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheMisses.Inc()
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	// Promote to the local layer for the remaining Redis TTL.
	if ttl, err := c.redisClient.TTL(ctx, c.keyPrefix+key).Result(); err == nil && ttl > 0 {
		c.local.Set(key, raw, ttl)
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true, decode(raw, dest)
}

func (c *layeredCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}

	c.local.Set(key, raw, ttl)

	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *layeredCache) Delete(ctx context.Context, key string) error {
	c.local.Delete(key)

	if c.redisClient == nil {
		return nil
	}
	return c.redisClient.Del(ctx, c.keyPrefix+key).Err()
}

func decode(raw []byte, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode cached value: %w", err)
	}
	return nil
}

// GetOrLoad returns the cached value for key, or calls load and caches its result.
// Cache failures are logged and never fail the call.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		log.Warnf("⚠️ Cache read failed for %s: %v", key, err)
	}
	if found && err == nil {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		log.Warnf("⚠️ Cache write failed for %s: %v", key, err)
	}
	return value, nil
}
