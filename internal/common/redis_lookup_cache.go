package common

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"infinite-experiment/wayfinder/internal/models/gorm"

	"github.com/redis/go-redis/v9"
)

const deleteBatchSize = 500

// RedisLookupCache is the Redis backend of the durable lookup cache. Each
// entry is a hash under {namespace}:lookup:{query}; a sorted set scored by
// last access (unix millis) indexes the entries for retention sweeps.
type RedisLookupCache struct {
	client   *redis.Client
	prefix   string
	indexKey string
}

// NewRedisLookupCache creates the store; namespace defaults to "wayfinder"
func NewRedisLookupCache(client *redis.Client, namespace string) *RedisLookupCache {
	if namespace == "" {
		namespace = "wayfinder"
	}
	return &RedisLookupCache{
		client:   client,
		prefix:   namespace + ":lookup:",
		indexKey: namespace + ":lookup-index",
	}
}

// Get returns the entry stored under key, or nil when there is none
func (r *RedisLookupCache) Get(ctx context.Context, key string) (*gorm.LocationLookupCache, error) {
	vals, err := r.client.HGetAll(ctx, r.prefix+key).Result()
	if err == redis.Nil || (err == nil && len(vals) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry := &gorm.LocationLookupCache{
		Query:        key,
		ResultType:   vals["result_type"],
		ResultIATA:   vals["result_iata"],
		ResultID:     vals["result_id"],
		Alternatives: vals["alternatives"],
	}
	if entry.Confidence, err = strconv.ParseFloat(vals["confidence"], 64); err != nil {
		return nil, fmt.Errorf("corrupt lookup cache entry %q: confidence: %w", key, err)
	}
	if entry.HitCount, err = strconv.ParseInt(vals["hit_count"], 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt lookup cache entry %q: hit_count: %w", key, err)
	}
	if entry.LastAccessed, err = time.Parse(time.RFC3339Nano, vals["last_accessed"]); err != nil {
		return nil, fmt.Errorf("corrupt lookup cache entry %q: last_accessed: %w", key, err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, vals["created_at"]); err != nil {
		entry.CreatedAt = entry.LastAccessed
	}
	return entry, nil
}

// Upsert writes the result fields, bumps hit_count (starting at 1) and
// keeps the first created_at.
func (r *RedisLookupCache) Upsert(ctx context.Context, entry *gorm.LocationLookupCache) error {
	now := entry.LastAccessed
	if now.IsZero() {
		now = time.Now()
	}
	created := entry.CreatedAt
	if created.IsZero() {
		created = now
	}
	key := r.prefix + entry.Query

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"result_type":   entry.ResultType,
			"result_iata":   entry.ResultIATA,
			"result_id":     entry.ResultID,
			"alternatives":  entry.Alternatives,
			"confidence":    strconv.FormatFloat(entry.Confidence, 'f', -1, 64),
			"last_accessed": now.UTC().Format(time.RFC3339Nano),
		})
		pipe.HSetNX(ctx, key, "created_at", created.UTC().Format(time.RFC3339Nano))
		pipe.HIncrBy(ctx, key, "hit_count", 1)
		pipe.ZAdd(ctx, r.indexKey, redis.Z{Score: float64(now.UnixMilli()), Member: entry.Query})
		return nil
	})
	return err
}

// DeleteOlderThan removes entries last accessed before cutoff
func (r *RedisLookupCache) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	members, err := r.client.ZRangeByScore(ctx, r.indexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	var deleted int64
	for start := 0; start < len(members); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(members))
		batch := members[start:end]

		keys := make([]string, len(batch))
		zmembers := make([]interface{}, len(batch))
		for i, m := range batch {
			keys[i] = r.prefix + m
			zmembers[i] = m
		}

		var del *redis.IntCmd
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, keys...)
			pipe.ZRem(ctx, r.indexKey, zmembers...)
			return nil
		})
		if err != nil {
			return deleted, err
		}
		deleted += del.Val()
	}
	return deleted, nil
}

// Count returns the number of indexed entries
func (r *RedisLookupCache) Count(ctx context.Context) (int64, error) {
	return r.client.ZCard(ctx, r.indexKey).Result()
}

// Ping checks the connection (used by the health check)
func (r *RedisLookupCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
