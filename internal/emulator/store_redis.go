// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canvio/canvio/internal/platform/apperr"
	"github.com/canvio/canvio/internal/platform/constants"
)

// RedisResetCodeStore implements [ResetCodeStore] using Redis.
//
// Codes expire server-side via Redis TTLs, so no sweeper is needed.
type RedisResetCodeStore struct {
	client *redis.Client
}

// NewRedisResetCodeStore creates a Redis-backed [ResetCodeStore].
func NewRedisResetCodeStore(client *redis.Client) *RedisResetCodeStore {
	return &RedisResetCodeStore{client: client}
}

// Set stores a reset code hash with its associated account ID and TTL.
func (store *RedisResetCodeStore) Set(ctx context.Context, code, accountID string, ttl time.Duration) error {
	key := constants.RedisPrefixResetCode + code

	if err := store.client.Set(ctx, key, accountID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_code_set_failed: %w", err)
	}

	return nil
}

// Get retrieves the account ID for a given code hash.
//
// Returns [apperr.NotFound] if the code is absent or expired.
func (store *RedisResetCodeStore) Get(ctx context.Context, code string) (string, error) {
	key := constants.RedisPrefixResetCode + code

	accountID, err := store.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Reset code")
		}
		return "", fmt.Errorf("redis_reset_code_get_failed: %w", err)
	}

	return accountID, nil
}

// Delete removes the code from Redis.
func (store *RedisResetCodeStore) Delete(ctx context.Context, code string) error {
	key := constants.RedisPrefixResetCode + code

	if err := store.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis_reset_code_delete_failed: %w", err)
	}

	return nil
}
