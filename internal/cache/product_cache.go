package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naturalmart/shop-api/internal/domain"
)

const productListKey = "products:all"

var ErrCacheMiss = errors.New("cache miss")

// ProductCache holds the full catalog listing under a single short-TTL key.
// Writers invalidate it; readers fall back to the database on any miss.
type ProductCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type productCache struct {
	client *redis.Client
}

func NewProductCache(client *redis.Client) ProductCache {
	return &productCache{client: client}
}

func (c *productCache) Get(ctx context.Context) ([]domain.Product, error) {
	val, err := c.client.Get(ctx, productListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product list from redis: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(val, &products); err != nil {
		// Drop the corrupt entry and treat it as a miss.
		_ = c.Invalidate(ctx)
		return nil, ErrCacheMiss
	}
	return products, nil
}

func (c *productCache) Set(ctx context.Context, products []domain.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal product list: %w", err)
	}
	if err := c.client.Set(ctx, productListKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set product list in redis: %w", err)
	}
	return nil
}

func (c *productCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, productListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product list cache: %w", err)
	}
	return nil
}
