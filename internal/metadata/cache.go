package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores raw lookup responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// RedisCache keeps lookup responses in Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps a go-redis client. Keys are namespaced with prefix.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, val, ttl).Err()
}

// Cached decorates a Lookup with a response cache. Searches are keyed and sent
// upstream in lower case. Cache errors degrade to a direct lookup. Empty searches and failed detail lookups are not cached.
type Cached struct {
	next  Lookup
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

var _ Lookup = (*Cached)(nil)

// NewCached constructs the decorator.
func NewCached(next Lookup, cache Cache, ttl time.Duration, log *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *Cached) Search(ctx context.Context, query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < MinQueryLen {
		return []Result{}
	}
	key := "search:" + query
	var hit []Result
	if c.load(ctx, key, &hit) {
		return hit
	}
	res := c.next.Search(ctx, query)
	if len(res) > 0 {
		c.store(ctx, key, res)
	}
	return res
}

func (c *Cached) GetDetails(ctx context.Context, id int) *Details {
	key := "details:" + strconv.Itoa(id)
	var hit Details
	if c.load(ctx, key, &hit) {
		return &hit
	}
	d := c.next.GetDetails(ctx, id)
	if d != nil {
		c.store(ctx, key, d)
	}
	return d
}

func (c *Cached) load(ctx context.Context, key string, out any) bool {
	b, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Debug("metadata cache get", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		c.log.Debug("metadata cache decode", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.log.Debug("metadata cache set", zap.String("key", key), zap.Error(err))
	}
}
