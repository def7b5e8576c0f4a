// Package redis caches journal list reads in Redis.
//
// Key components:
//   - Cache: JSON values with TTL over a go-redis client
//   - CachedRepository: journal.Repository decorator that serves lists from
//     the cache and drops them on every write
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes the Redis connection used by the list cache.
type Config struct {
	Addr     string // host:port
	Password string
	DB       int

	PoolSize    int
	MaxRetries  int
	DialTimeout time.Duration
	IOTimeout   time.Duration

	// KeyPrefix is prepended to every key.
	KeyPrefix string
}

// DefaultConfig targets a local Redis.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		PoolSize:    10,
		MaxRetries:  3,
		DialTimeout: 5 * time.Second,
		IOTimeout:   3 * time.Second,
		KeyPrefix:   "journal:",
	}
}

var (
	ErrCacheMiss        = errors.New("journal cache: miss")
	ErrCacheUnavailable = errors.New("journal cache: redis unavailable")
	ErrCacheEncoding    = errors.New("journal cache: bad payload")
)

// Cache stores JSON values under prefixed keys.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

// NewCache dials Redis and fails unless it answers a PING within the dial
// timeout.
func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.IOTimeout,
		WriteTimeout: cfg.IOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return &Cache{rdb: rdb, prefix: cfg.KeyPrefix}, nil
}

func (c *Cache) Close() error { return c.rdb.Close() }

// Ping makes Cache usable as a health probe.
func (c *Cache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Cache) key(name string) string { return c.prefix + name }

// Set writes value as JSON; ttl 0 keeps it until deleted.
func (c *Cache) Set(ctx context.Context, name string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheEncoding, err)
	}
	return c.rdb.Set(ctx, c.key(name), raw, ttl).Err()
}

// Get decodes the value stored under name into dest.
func (c *Cache) Get(ctx context.Context, name string, dest any) error {
	raw, err := c.rdb.Get(ctx, c.key(name)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheEncoding, err)
	}
	return nil
}

// Delete drops the named keys in one round trip.
func (c *Cache) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, c.key(n))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
