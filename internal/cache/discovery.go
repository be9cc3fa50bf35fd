package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/domain"
)

// Discovery is the read-through/write-through cache for discovery result
// pages. Backend failures surface as DependencyDegraded so the orchestrator
// can bypass the cache explicitly instead of failing the request.
type Discovery struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDiscovery(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Discovery {
	return &Discovery{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached page for key, if present and unexpired.
func (c *Discovery) Get(ctx context.Context, key string) (*domain.DiscoveryPage, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, domain.Degraded("cache", err)
	}
	var page domain.DiscoveryPage
	if err := json.Unmarshal(raw, &page); err != nil {
		// Corrupt entry: drop it and treat as a miss.
		c.rdb.Del(ctx, key)
		return nil, false, nil
	}
	return &page, true, nil
}

// Set stores the page under key with the configured TTL.
func (c *Discovery) Set(ctx context.Context, key string, page *domain.DiscoveryPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return domain.Degraded("cache", err)
	}
	return nil
}

// InvalidateUser removes every cached page belonging to one requester.
// Scoped to the user's key prefix, never a global flush.
func (c *Discovery) InvalidateUser(ctx context.Context, requesterID int64) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, userPrefix(requesterID), 100).Result()
		if err != nil {
			return domain.Degraded("cache", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return domain.Degraded("cache", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
