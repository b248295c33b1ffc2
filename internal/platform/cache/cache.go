// Package cache provides the Redis-backed dashboard statistics cache.
//
// Entries are keyed by statistic name and reference date. Invalidation bumps
// a generation counter that is part of every key, so all cached statistics
// become unreachable at once and expire on their own TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/registry-api/internal/config"
	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/platform/logger"
)

const (
	keyPrefix     = "registry:dashboard:"
	generationKey = keyPrefix + "generation"
)

// DashboardCache caches computed dashboard statistics in Redis.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to Redis using cfg.
// Returns nil if the URL is empty (caching disabled).
func New(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (*DashboardCache, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewWithClient(client, cfg.TTL, logger), nil
}

// NewWithClient wraps an existing client. The cache takes ownership of it.
func NewWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *DashboardCache {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "dashboard_cache")),
	}
}

// entryKey builds the key for stat at ref under the given generation.
func entryKey(generation int64, stat string, ref domain.BirthDate) string {
	return keyPrefix + "v" + strconv.FormatInt(generation, 10) + ":" + stat + ":" + ref.String()
}

func (c *DashboardCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get loads the cached value of stat at ref into dest. It returns the
// cache generation the lookup ran under; pass it to Set when storing a
// value computed after a miss. found is false with a nil error on a miss.
func (c *DashboardCache) Get(
	ctx context.Context,
	stat string,
	ref domain.BirthDate,
	dest any,
) (generation int64, found bool, err error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("read cache generation: %w", err)
	}

	raw, err := c.client.Get(ctx, entryKey(gen, stat, ref)).Bytes()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, fmt.Errorf("read cached %s: %w", stat, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("discarding undecodable cache entry",
			slog.String("stat", stat),
			slog.String("error", err.Error()))
		return gen, false, nil
	}
	return gen, true, nil
}

// Set stores value as the cached stat at ref under generation. The write
// is dropped when the cache was invalidated after generation was read, so
// a value computed from superseded data is never served.
func (c *DashboardCache) Set(
	ctx context.Context,
	generation int64,
	stat string,
	ref domain.BirthDate,
	value any,
) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", stat, err)
	}

	key := entryKey(generation, stat, ref)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("read cache generation: %w", err)
		}
		if current != generation {
			logger.FromContextOrDefault(ctx, c.logger).Debug("skipping stale cache write",
				slog.String("stat", stat),
				slog.Int64("generation", generation),
				slog.Int64("current", current))
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		// generation moved between the check and the write
		return nil
	}
	if err != nil {
		return fmt.Errorf("write cached %s: %w", stat, err)
	}
	return nil
}

// Invalidate makes every cached statistic unreachable.
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, generationKey).Result()
	if err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	logger.FromContextOrDefault(ctx, c.logger).Debug("dashboard cache invalidated",
		slog.Int64("generation", gen))
	return nil
}

// Health checks if the Redis connection is healthy.
func (c *DashboardCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *DashboardCache) Close() error {
	return c.client.Close()
}
