package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/repo"
	"github.com/localserve/localserve-api/pkg/logger"
)

const catalogListKey = "catalog:services"

// CatalogCache caches the catalog listing in redis. Reads fail open: any
// redis error is treated as a miss so the caller falls through to postgres.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) repo.CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

func (c *CatalogCache) GetList(ctx context.Context) ([]domain.Service, bool) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	data, err := c.client.Get(ctx, catalogListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WarnContext(ctx, "catalog cache read failed", "error", err)
		}
		return nil, false
	}

	var services []domain.Service
	if err := json.Unmarshal(data, &services); err != nil {
		logger.WarnContext(ctx, "catalog cache decode failed", "error", err)
		return nil, false
	}
	return services, true
}

func (c *CatalogCache) SetList(ctx context.Context, services []domain.Service) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	data, err := json.Marshal(services)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, catalogListKey, data, c.ttl).Err(); err != nil {
		logger.WarnContext(ctx, "catalog cache write failed", "error", err)
	}
}

func (c *CatalogCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := c.client.Del(ctx, catalogListKey).Err(); err != nil {
		logger.WarnContext(ctx, "catalog cache invalidate failed", "error", err)
	}
}
