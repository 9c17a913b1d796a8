package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"brilliora/models"

	"github.com/redis/go-redis/v9"
)

const (
	listKeyPrefix    = "products:list:"
	productKeyPrefix = "products:item:"
)

func NewRedisProductCache(client *redis.Client) *RedisProductCache {
	return &RedisProductCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

type RedisProductCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisProductCache) GetList(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	var products []models.Product
	if err := r.get(ctx, listKey(q), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *RedisProductCache) SetList(ctx context.Context, q models.ProductQuery, products []models.Product) error {
	return r.set(ctx, listKey(q), products)
}

func (r *RedisProductCache) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.get(ctx, productKeyPrefix+id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *RedisProductCache) SetProduct(ctx context.Context, id string, product *models.Product) error {
	return r.set(ctx, productKeyPrefix+id, product)
}

func (r *RedisProductCache) Invalidate(ctx context.Context, id string) error {
	keys := []string{}
	if id != "" {
		keys = append(keys, productKeyPrefix+id)
	}

	iter := r.client.Scan(ctx, 0, listKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisProductCache) get(ctx context.Context, key string, dst interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisProductCache) set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Second
	if err := r.client.Set(ctx, key, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func listKey(q models.ProductQuery) string {
	return fmt.Sprintf("%scategory=%s;sort=%s", listKeyPrefix, q.Category, q.Sort)
}
