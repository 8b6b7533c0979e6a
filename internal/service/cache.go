package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PromptCache memoizes provider responses keyed by the exact prompt pair so
// identical requests within a process lifetime skip the provider. A miss is
// never an error; implementations swallow backend failures as misses.
type PromptCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// CacheKey derives the cache key for a (system, user) prompt pair.
func CacheKey(system, user string) string {
	sum := sha256.Sum256([]byte(system + "\x00" + user))
	return hex.EncodeToString(sum[:])
}

// RedisCache stores responses in Redis with a TTL, shared across processes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisCache creates a Redis-backed prompt cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "prompt_cache").Logger(),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.redisKey(key)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("cache read failed, treating as miss")
		}
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, c.redisKey(key), value, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("cache write failed")
	}
}

func (c *RedisCache) redisKey(key string) string {
	return fmt.Sprintf("adapt:response:%s", key)
}

// LRUCache is a bounded in-process cache; the least recently used entry is
// evicted once capacity is reached.
type LRUCache struct {
	entries *lru.Cache[string, string]
}

// NewLRUCache creates an in-process prompt cache holding at most capacity
// entries.
func NewLRUCache(capacity int) (*LRUCache, error) {
	entries, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &LRUCache{entries: entries}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) (string, bool) {
	return c.entries.Get(key)
}

func (c *LRUCache) Set(_ context.Context, key, value string) {
	c.entries.Add(key, value)
}

// NopCache disables memoization; every call reaches the provider.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool) { return "", false }
func (NopCache) Set(context.Context, string, string)        {}
