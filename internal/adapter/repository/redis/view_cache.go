package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "causeway:view:"

// ViewCache implements domain.ViewCache on Redis. While Redis is unreachable
// every Get misses and every Set is dropped, so views are rendered from
// scratch instead of failing.
type ViewCache struct {
	client    *redis.Client
	ttl       time.Duration
	logger    *slog.Logger
	available atomic.Bool
}

func NewViewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ViewCache {
	c := &ViewCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "view_cache"),
	}
	c.available.Store(true)
	return c
}

func (c *ViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.available.Load() {
		return nil, domain.ErrCacheMiss
	}
	b, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		c.markDown(err)
		return nil, fmt.Errorf("get cached view: %w", err)
	}
	return b, nil
}

func (c *ViewCache) Set(ctx context.Context, key string, value []byte) error {
	if !c.available.Load() {
		return nil
	}
	if err := c.client.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		c.markDown(err)
		return fmt.Errorf("cache view: %w", err)
	}
	return nil
}

func (c *ViewCache) markDown(err error) {
	if isNetworkError(err) && c.available.CompareAndSwap(true, false) {
		c.logger.Error("redis connection lost, bypassing view cache", "error", err)
	}
}

// StartHealthCheck pings Redis every interval and re-enables the cache once
// it answers again. It blocks until ctx is done.
func (c *ViewCache) StartHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.client.Ping(ctx).Err(); err != nil {
				if c.available.CompareAndSwap(true, false) {
					c.logger.Error("redis connection lost", "error", err)
				}
				continue
			}
			if c.available.CompareAndSwap(false, true) {
				c.logger.Info("redis connection recovered")
			}
		}
	}
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed) || errors.Is(err, context.DeadlineExceeded)
}
