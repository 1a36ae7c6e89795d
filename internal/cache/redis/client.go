// Package redis provides the two Redis-backed concerns of the service:
// per-host selector memory consumed by the field resolver, and a result
// cache for finished extractions. Both sit behind a circuit breaker so a
// struggling Redis degrades the service to cache-less operation instead of
// failing requests.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/productlens/backend/internal/extraction/resolver"
	"github.com/productlens/backend/internal/metrics"
	"github.com/productlens/backend/pkg/circuitbreaker"
	"github.com/productlens/backend/pkg/config"
	"github.com/productlens/backend/pkg/logger"
)

const (
	selectorMemoryPrefix = "memory:selectors:"
	resultCachePrefix    = "cache:extraction:"
)

// ErrCacheMiss is returned when a key is absent. Callers treat it as a
// normal outcome, not a failure.
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb     *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	breaker := circuitbreaker.New("redis", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Logger:           logger.Log,
	})

	return &Client{
		rdb:     rdb,
		breaker: breaker,
		ttl:     time.Duration(cfg.CacheTTL) * time.Second,
	}, nil
}

// GetMemory implements resolver.MemoryReader. Selector memory is stored as
// one JSON document per host, written by an external learning job; this
// service only reads it.
func (c *Client) GetMemory(ctx context.Context, host string) (map[resolver.Field]resolver.MemoryEntry, error) {
	var entries map[resolver.Field]resolver.MemoryEntry

	err := c.breaker.Execute(ctx, func() error {
		raw, err := c.rdb.Get(ctx, selectorMemoryPrefix+host).Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(raw), &entries)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read selector memory: %w", err)
	}

	return entries, nil
}

// GetResult fetches a cached extraction payload by its content key.
func (c *Client) GetResult(ctx context.Context, key string, out interface{}) error {
	err := c.breaker.Execute(ctx, func() error {
		raw, err := c.rdb.Get(ctx, resultCachePrefix+key).Result()
		if err == redis.Nil {
			return ErrCacheMiss
		}
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(raw), out)
	})

	switch {
	case err == nil:
		metrics.CacheHits.WithLabelValues("extraction").Inc()
		return nil
	case errors.Is(err, ErrCacheMiss):
		metrics.CacheMisses.WithLabelValues("extraction").Inc()
		return ErrCacheMiss
	default:
		return fmt.Errorf("failed to read result cache: %w", err)
	}
}

// SetResult stores a finished extraction under its content key.
func (c *Client) SetResult(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached result: %w", err)
	}

	err = c.breaker.Execute(ctx, func() error {
		return c.rdb.Set(ctx, resultCachePrefix+key, raw, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to write result cache: %w", err)
	}

	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() {
	if err := c.rdb.Close(); err != nil {
		logger.Warn("Failed to close redis client", zap.Error(err))
	}
}
