// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trev-sykes/feels-aggregate/models"
)

const (
	keyPrefix = "feels:heatmap:"
	genPrefix = "feels:heatmap-gen:"
)

// genTTL keeps generation counters around well past the end of their day
const genTTL = 48 * time.Hour

// RedisCache shares snapshots between server instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	c := redis.NewClient(opts)

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return &RedisCache{client: c, ttl: ttl}, nil
}

func Key(day string) string {
	return keyPrefix + day
}

// GenKey is the key holding a day's generation counter
func GenKey(day string) string {
	return genPrefix + day
}

func (rc *RedisCache) Get(ctx context.Context, day string) (*models.HeatmapResponse, bool, error) {
	data, err := rc.client.Get(ctx, Key(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading snapshot from redis: %w", err)
	}

	var snap models.HeatmapResponse
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("error decoding cached snapshot: %w", err)
	}
	return &snap, true, nil
}

func (rc *RedisCache) Generation(ctx context.Context, day string) (uint64, error) {
	return generation(ctx, rc.client, day)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, c getter, day string) (uint64, error) {
	gen, err := c.Get(ctx, GenKey(day)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error reading snapshot generation: %w", err)
	}
	return gen, nil
}

// Set writes the snapshot only while the day's generation still equals gen.
// The generation key is WATCHed, so a Delete landing between the check and
// the write aborts the transaction.
func (rc *RedisCache) Set(ctx context.Context, day string, gen uint64, snap *models.HeatmapResponse) (bool, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("error encoding snapshot: %w", err)
	}

	stored := false
	err = rc.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx, day)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(day), data, rc.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, GenKey(day))

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error writing snapshot to redis: %w", err)
	}
	return stored, nil
}

// Delete advances the generation and drops the snapshot in one transaction
func (rc *RedisCache) Delete(ctx context.Context, day string) error {
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenKey(day))
		pipe.Expire(ctx, GenKey(day), genTTL)
		pipe.Del(ctx, Key(day))
		return nil
	})
	if err != nil {
		return fmt.Errorf("error deleting snapshot from redis: %w", err)
	}
	return nil
}

func (rc *RedisCache) Close() error {
	if err := rc.client.Close(); err != nil {
		return fmt.Errorf("error closing redis client: %w", err)
	}
	return nil
}
