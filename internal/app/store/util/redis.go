package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homenest/internal/app/store/entity"

	"github.com/redis/go-redis/v9"
)

const categoryTreeCacheKey = "categories:tree"

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// SetCategoryTree кладет собранное дерево категорий в кэш
func (r *RedisClient) SetCategoryTree(ctx context.Context, tree []entity.Category, ttl time.Duration) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal category tree: %w", err)
	}

	if err := r.client.Set(ctx, categoryTreeCacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set category tree in cache: %w", err)
	}

	return nil
}

// GetCategoryTree возвращает дерево из кэша, (nil, nil) при промахе
func (r *RedisClient) GetCategoryTree(ctx context.Context) ([]entity.Category, error) {
	data, err := r.client.Get(ctx, categoryTreeCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category tree from cache: %w", err)
	}

	var tree []entity.Category
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category tree: %w", err)
	}

	return tree, nil
}

// InvalidateCategoryTree сбрасывает кэш после любой записи в категории
func (r *RedisClient) InvalidateCategoryTree(ctx context.Context) error {
	if err := r.client.Del(ctx, categoryTreeCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate category tree cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
