package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizgen/quizgen-backend/internal/config"
)

// APIKeyTTL bounds how long an unused key stays cached.
const APIKeyTTL = 30 * 24 * time.Hour

type APIKeyRepository struct {
	rdb *redis.Client
}

func NewAPIKeyRepository(rdb *redis.Client) *APIKeyRepository {
	return &APIKeyRepository{rdb: rdb}
}

// Get returns "" when no key is cached for clientID.
func (r *APIKeyRepository) Get(ctx context.Context, clientID string) (string, error) {
	key, err := r.rdb.Get(ctx, config.CacheKey.ClientAPIKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return key, nil
}

func (r *APIKeyRepository) Set(ctx context.Context, clientID, apiKey string) error {
	return r.rdb.Set(ctx, config.CacheKey.ClientAPIKey(clientID), apiKey, APIKeyTTL).Err()
}

func (r *APIKeyRepository) Clear(ctx context.Context, clientID string) error {
	return r.rdb.Del(ctx, config.CacheKey.ClientAPIKey(clientID)).Err()
}
