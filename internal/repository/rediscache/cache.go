package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bloemp/stockreport/internal/config"
)

const reportKeyPrefix = "stockreport:test:"

// Cache stores rendered reports keyed by stock item.
type Cache interface {
	GetReport(ctx context.Context, stockItemID int64) (string, bool, error)
	SetReport(ctx context.Context, stockItemID int64, document string) error
	Invalidate(ctx context.Context, stockItemID int64) error
}

// RedisCache implements Cache on top of Redis with a per-entry TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a Redis-backed report cache from configuration.
func New(cfg config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisCache{client: client, ttl: cfg.TTL}
}

func reportKey(stockItemID int64) string {
	return fmt.Sprintf("%s%d", reportKeyPrefix, stockItemID)
}

// GetReport returns the cached rendered report, if any.
func (c *RedisCache) GetReport(ctx context.Context, stockItemID int64) (string, bool, error) {
	value, err := c.client.Get(ctx, reportKey(stockItemID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cached report for item %d: %w", stockItemID, err)
	}
	return value, true, nil
}

// SetReport caches a rendered report for the configured TTL.
func (c *RedisCache) SetReport(ctx context.Context, stockItemID int64, document string) error {
	if err := c.client.Set(ctx, reportKey(stockItemID), document, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache report for item %d: %w", stockItemID, err)
	}
	return nil
}

// Invalidate drops the cached report for an item. Called whenever a new
// result is recorded so the next fetch re-renders.
func (c *RedisCache) Invalidate(ctx context.Context, stockItemID int64) error {
	if err := c.client.Del(ctx, reportKey(stockItemID)).Err(); err != nil {
		return fmt.Errorf("invalidate report for item %d: %w", stockItemID, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
