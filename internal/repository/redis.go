package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"occupancy/internal/config"
	"occupancy/internal/models"

	"github.com/redis/go-redis/v9"
)

const viewKeyPrefix = "view_state:"

type RedisViewStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from configuration without connecting.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisViewStateRepository(client *redis.Client, ttl time.Duration) *RedisViewStateRepository {
	return &RedisViewStateRepository{
		client: client,
		ttl:    ttl,
	}
}

func viewKey(sessionID string) string {
	return viewKeyPrefix + sessionID
}

func (r *RedisViewStateRepository) GetView(ctx context.Context, sessionID string) (*models.ViewState, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, viewKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view from redis: %w", err)
	}

	var view models.ViewState
	if err := json.Unmarshal(val, &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal view: %w", err)
	}

	return &view, nil
}

func (r *RedisViewStateRepository) SaveView(ctx context.Context, view *models.ViewState) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}

	if err := r.client.Set(ctx, viewKey(view.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set view in redis: %w", err)
	}

	return nil
}

func (r *RedisViewStateRepository) DeleteView(ctx context.Context, sessionID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, viewKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete view from redis: %w", err)
	}
	return nil
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
