package missionpool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares pools across instances. The first writer of a day wins
// through SET NX; the key expires at the next UTC midnight.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache wraps a go-redis client
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisClient dials addr and pings it
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolSize:        10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func redisKey(userID, dateKey string) string {
	return redisKeyPrefix + cacheKey(userID, dateKey)
}

func (c *RedisCache) SetIfAbsent(ctx context.Context, userID, dateKey string, ids []string, expireAt time.Time) ([]string, error) {
	payload, err := json.Marshal(cachedPool{Version: cacheSchemaVersion, IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsgRedisEncodeFailed, err)
	}

	ttl := time.Until(expireAt)
	if ttl < minRedisTTL {
		ttl = minRedisTTL
	}

	key := redisKey(userID, dateKey)
	stored, err := c.client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsgRedisSetNXFailed, err)
	}
	if stored {
		return ids, nil
	}

	existing, found, err := c.Get(ctx, userID, dateKey)
	if err != nil {
		return nil, err
	}
	if !found {
		// expired between SETNX and GET
		return ids, nil
	}
	return existing, nil
}

func (c *RedisCache) Get(ctx context.Context, userID, dateKey string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, redisKey(userID, dateKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", errMsgRedisGetFailed, err)
	}

	var entry cachedPool
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("%s: %w", errMsgRedisDecodeFailed, err)
	}
	if entry.Version != cacheSchemaVersion {
		return nil, false, nil
	}
	return entry.IDs, true, nil
}
