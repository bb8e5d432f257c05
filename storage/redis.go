package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	atlasportal "github.com/bridgeworld/atlas-portal"
	"github.com/redis/go-redis/v9"
)

// Redis provides a Redis key-value storage implementation of storage interfaces.
// It handles database operations for resolution reports, cached search
// results, and lore chunks.
type Redis struct {
	Client *redis.Client

	// CacheTTL bounds the lifetime of cached search results. Zero means
	// cached results never expire.
	CacheTTL time.Duration
}

const (
	redisReportPrefix = "report:"
	redisCachePrefix  = "cache:"
	redisLorePrefix   = "lore:"
)

// NewRedis creates a new Redis client connection with the provided configuration.
// It returns an initialized Redis struct and any error encountered during connection setup.
func NewRedis(addr, password string, db int) (Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return Redis{}, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return Redis{
		Client: client,
	}, nil
}

// KVReport retrieves a resolution report by ID from the Redis database.
// It returns the found report or an error if the report doesn't exist or if the query fails.
func (r Redis) KVReport(id string) (atlasportal.Report, error) {
	var result atlasportal.Report

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	content, err := r.Client.Get(ctx, redisReportPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return result, atlasportal.ErrReportNotFound
		}
		return result, fmt.Errorf("failed to get report: %w", err)
	}

	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return result, nil
}

// KVUpsertReport creates or updates a resolution report in the Redis database.
func (r Redis) KVUpsertReport(report atlasportal.Report) error {
	content, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.Client.Set(ctx, redisReportPrefix+report.ID, content, 0).Err(); err != nil {
		return fmt.Errorf("failed to set report: %w", err)
	}

	return nil
}

// KVCachedResults retrieves cached search results by query key from the Redis database.
// It returns ErrCacheMiss if no results are cached for the key.
func (r Redis) KVCachedResults(key string) ([]atlasportal.Result, error) {
	var results []atlasportal.Result

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	content, err := r.Client.Get(ctx, redisCachePrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, atlasportal.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cached results: %w", err)
	}

	if err := json.Unmarshal([]byte(content), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached results: %w", err)
	}

	return results, nil
}

// KVCacheResults stores search results under the given query key in the Redis database.
func (r Redis) KVCacheResults(key string, results []atlasportal.Result) error {
	content, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.Client.Set(ctx, redisCachePrefix+key, content, r.CacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set cached results: %w", err)
	}

	return nil
}

// KVLoreChunk retrieves a lore chunk by ID from the Redis database.
func (r Redis) KVLoreChunk(id string) (atlasportal.LoreChunk, error) {
	var result atlasportal.LoreChunk

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	content, err := r.Client.Get(ctx, redisLorePrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return result, atlasportal.ErrLoreChunkNotFound
		}
		return result, fmt.Errorf("failed to get lore chunk: %w", err)
	}

	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal lore chunk: %w", err)
	}

	return result, nil
}

// KVUpsertLoreChunks creates or updates multiple lore chunks in the Redis database.
// It returns an error if any database operation fails during the process.
func (r Redis) KVUpsertLoreChunks(chunks []atlasportal.LoreChunk) error {
	pipe := r.Client.Pipeline()

	setCtx, setCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer setCancel()

	for _, chunk := range chunks {
		content, err := json.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("failed to marshal lore chunk: %w", err)
		}
		pipe.Set(setCtx, redisLorePrefix+chunk.ID, content, 0)
	}

	execCtx, execCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer execCancel()

	_, err := pipe.Exec(execCtx)
	if err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	return nil
}
