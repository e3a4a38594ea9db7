// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KeyPrefix namespaces briefing keys so Clear never touches foreign data.
const KeyPrefix = "fieldpulse:briefing:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
	TTL      time.Duration
}

// RedisCache is a Redis-backed BriefingCache. Briefings are stored as JSON.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
	stats  counters
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("connected to Redis cache")
	return newRedisCache(client, cfg.TTL, logger), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, id string) (adm.Briefing, bool, error) {
	val, err := c.client.Get(ctx, KeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		c.stats.misses.Add(1)
		return adm.Briefing{}, false, nil
	}
	if err != nil {
		c.stats.misses.Add(1)
		return adm.Briefing{}, false, fmt.Errorf("redis get %s: %w", id, err)
	}

	var b adm.Briefing
	if err := json.Unmarshal(val, &b); err != nil {
		// A corrupt entry is a miss; the caller rebuilds and overwrites it.
		c.logger.Warn().Err(err).Str("briefing_id", id).Msg("discarding undecodable cached briefing")
		c.stats.misses.Add(1)
		return adm.Briefing{}, false, nil
	}
	c.stats.hits.Add(1)
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, b adm.Briefing) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode briefing %s: %w", b.ID, err)
	}
	if err := c.client.Set(ctx, KeyPrefix+b.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", b.ID, err)
	}
	c.stats.sets.Add(1)
	return nil
}

// Clear deletes every briefing key. Other keys in the database survive.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	c.stats.evictions.Add(n)
	return nil
}

// Stats returns counters; CurrentSize counts briefing keys only.
func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	size := 0
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		size++
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis scan failed")
	}
	return c.stats.snapshot(size)
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// HealthCheck checks if Redis is available.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
