// Package redis stores review data in Redis, one string value per key.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/database"
)

// DefaultMaxRetries bounds optimistic update attempts.
const DefaultMaxRetries = 5

// KV implements repository.KV on Redis. Update uses WATCH/MULTI so concurrent
// writers to the same product never lose each other's changes.
type KV struct {
	client     *redis.Client
	maxRetries int
}

// NewKV creates a Redis KV. maxRetries <= 0 uses DefaultMaxRetries.
func NewKV(client *redis.Client, maxRetries int) *KV {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &KV{client: client, maxRetries: maxRetries}
}

func (k *KV) Get(ctx context.Context, key string) (data []byte, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "kv.get", key)
	defer func() { end(err) }()

	data, err = k.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "kv.set", key)
	defer func() { end(err) }()

	if err = k.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "kv.delete", key)
	defer func() { end(err) }()

	if err = k.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Update retries fn whenever key changes between the read and the write.
// After maxRetries lost races it returns repository.ErrConflict.
func (k *KV) Update(ctx context.Context, key string, fn repository.UpdateFunc) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "kv.update", key)
	defer func() { end(err) }()

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		exists := true
		if errors.Is(err, redis.Nil) {
			exists = false
		} else if err != nil {
			return fmt.Errorf("redis get %s: %w", key, err)
		}

		next, err := fn(cur, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < k.maxRetries; attempt++ {
		err = k.client.Watch(ctx, txf, key)
		switch {
		case err == nil, errors.Is(err, repository.ErrSkipWrite):
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return err
		}
	}
	return fmt.Errorf("redis update %s after %d attempts: %w", key, k.maxRetries, repository.ErrConflict)
}

// Ping checks connectivity.
func (k *KV) Ping(ctx context.Context) error {
	return k.client.Ping(ctx).Err()
}
