package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
)

// ErrNotFound is returned when a key or hash field does not exist.
var ErrNotFound = errors.New("cache: not found")

// Store is the ephemeral-store surface the coordination services depend on.
// The Redis client implements it in production; tests use MemoryStore.
type Store interface {
	Get(key string) (string, error)
	GetBytes(key string) ([]byte, error)
	Set(key string, value interface{}, ttl time.Duration) error
	// GetDel reads and removes a key in one round trip. Used for refresh
	// token rotation so a jti can be consumed exactly once.
	GetDel(key string) (string, error)
	Delete(keys ...string) error
	Exists(key string) (bool, error)
	ScanKeys(pattern string) ([]string, error)

	HashSet(key, field string, value interface{}) error
	HashGet(key, field string) (string, error)
	HashDelete(key string, fields ...string) error
	HashGetAll(key string) (map[string]string, error)
	HashIncrBy(key, field string, delta int64) (int64, error)

	Ping() error
}

// RedisCache wraps the Redis client with the Store operations. Every key is
// prefixed with the namespace injected at construction; the namespace is set
// once at process start and never mutated afterwards.
type RedisCache struct {
	client    *redis.Client
	ctx       context.Context
	namespace string
}

// NewRedisCache creates a new Redis store client.
func NewRedisCache(addr, password string, db int, namespace string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ctx:       context.Background(),
		namespace: namespace,
	}
}

func (c *RedisCache) key(k string) string {
	if c.namespace == "" {
		return k
	}
	return c.namespace + ":" + k
}

// wrap translates a driver error into the store taxonomy.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
}

func (c *RedisCache) Get(key string) (string, error) {
	val, err := c.client.Get(c.ctx, c.key(key)).Result()
	return val, wrap(err)
}

func (c *RedisCache) GetBytes(key string) ([]byte, error) {
	val, err := c.client.Get(c.ctx, c.key(key)).Bytes()
	return val, wrap(err)
}

func (c *RedisCache) Set(key string, value interface{}, ttl time.Duration) error {
	return wrap(c.client.Set(c.ctx, c.key(key), value, ttl).Err())
}

func (c *RedisCache) GetDel(key string) (string, error) {
	val, err := c.client.GetDel(c.ctx, c.key(key)).Result()
	return val, wrap(err)
}

func (c *RedisCache) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = c.key(k)
	}
	return wrap(c.client.Del(c.ctx, namespaced...).Err())
}

func (c *RedisCache) Exists(key string) (bool, error) {
	count, err := c.client.Exists(c.ctx, c.key(key)).Result()
	if err != nil {
		return false, wrap(err)
	}
	return count > 0, nil
}

// ScanKeys returns all keys matching the pattern, with the namespace prefix
// stripped so callers see the same keys they wrote.
func (c *RedisCache) ScanKeys(pattern string) ([]string, error) {
	var keys []string
	prefix := ""
	if c.namespace != "" {
		prefix = c.namespace + ":"
	}
	iter := c.client.Scan(c.ctx, 0, c.key(pattern), 0).Iterator()
	for iter.Next(c.ctx) {
		k := iter.Val()
		if prefix != "" {
			k = k[len(prefix):]
		}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		return nil, wrap(err)
	}
	return keys, nil
}

func (c *RedisCache) HashSet(key, field string, value interface{}) error {
	return wrap(c.client.HSet(c.ctx, c.key(key), field, value).Err())
}

func (c *RedisCache) HashGet(key, field string) (string, error) {
	val, err := c.client.HGet(c.ctx, c.key(key), field).Result()
	return val, wrap(err)
}

func (c *RedisCache) HashDelete(key string, fields ...string) error {
	return wrap(c.client.HDel(c.ctx, c.key(key), fields...).Err())
}

func (c *RedisCache) HashGetAll(key string) (map[string]string, error) {
	entries, err := c.client.HGetAll(c.ctx, c.key(key)).Result()
	if err != nil {
		return nil, wrap(err)
	}
	return entries, nil
}

func (c *RedisCache) HashIncrBy(key, field string, delta int64) (int64, error) {
	val, err := c.client.HIncrBy(c.ctx, c.key(key), field, delta).Result()
	return val, wrap(err)
}

func (c *RedisCache) Ping() error {
	return wrap(c.client.Ping(c.ctx).Err())
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
