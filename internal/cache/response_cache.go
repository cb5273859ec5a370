// Package cache stores rendered query responses in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"projectsearch/internal/model"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "projectsearch:query:"

// ResponseCache is the lookup surface used by the search pipeline
type ResponseCache interface {
	Get(ctx context.Context, key string) (*model.QueryResponse, error)
	Set(ctx context.Context, key string, resp *model.QueryResponse) error
}

// RedisCache implements ResponseCache on go-redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Options holds Redis connection configuration
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache connects and pings Redis
func NewRedisCache(ctx context.Context, opts Options) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Key derives the cache key for a query against one dataset snapshot. Whitespace and
// case differences share a key; a different snapshot never does.
func Key(snapshot, text string, useModel bool, topK int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized + "|" + strconv.FormatBool(useModel) + "|" + strconv.Itoa(topK)))
	return snapshot + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached response or ErrCacheMiss
func (c *RedisCache) Get(ctx context.Context, key string) (*model.QueryResponse, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var resp model.QueryResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	return &resp, nil
}

// Set stores resp under key with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, resp *model.QueryResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
