// Package cache provides the Redis-backed answer cache. Identical
// questions within the TTL window are served without re-running the
// pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/config"
)

const answerKeyPrefix = "answer:"

// AnswerCache maps normalized questions to previously computed answers.
// All operations are best-effort: a cache outage degrades to cache
// misses, never to request failures.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient builds the shared Redis client from configuration and
// verifies connectivity.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// NewAnswerCache creates an answer cache over an existing client.
func NewAnswerCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *AnswerCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AnswerCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "answer_cache")),
	}
}

// cacheKey normalizes and hashes the question so arbitrarily long or
// oddly cased questions map to bounded keys.
func cacheKey(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return answerKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached answer for the question, or ("", false) on a
// miss or cache failure.
func (c *AnswerCache) Get(ctx context.Context, question string) (string, bool) {
	answer, err := c.client.Get(ctx, cacheKey(question)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("answer cache read failed", zap.Error(err))
		}
		return "", false
	}
	return answer, true
}

// Set stores the answer under the question's key. Failures are logged
// and dropped.
func (c *AnswerCache) Set(ctx context.Context, question, answer string) {
	if err := c.client.Set(ctx, cacheKey(question), answer, c.ttl).Err(); err != nil {
		c.logger.Warn("answer cache write failed", zap.Error(err))
	}
}

// Delete evicts one question's cached answer.
func (c *AnswerCache) Delete(ctx context.Context, question string) {
	if err := c.client.Del(ctx, cacheKey(question)).Err(); err != nil {
		c.logger.Warn("answer cache delete failed", zap.Error(err))
	}
}

// Flush drops every cached answer. Used after re-ingesting documents,
// since stale answers may no longer reflect the index.
func (c *AnswerCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, answerKeyPrefix+"*", 100).Iterator()
	keys := make([]string, 0, 100)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
