package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by the redis lookups when a key is absent.
var ErrMiss = errors.New("cache: key not found")

// RedisOptions configures a shared cache backend.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// Redis is a Cache shared between processes. Values are stored as JSON
// entries; keys also carry a server-side TTL.
type Redis[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    Clock
}

// Connect opens and pings a redis client.
func Connect(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	if opts.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Address, err)
	}
	return client, nil
}

// NewRedis wraps client. Keys are namespaced with prefix.
func NewRedis[V any](client *redis.Client, prefix string, ttl time.Duration, clock Clock) *Redis[V] {
	if clock == nil {
		clock = time.Now
	}
	return &Redis[V]{client: client, prefix: prefix, ttl: ttl, now: clock}
}

func (c *Redis[V]) key(k string) string {
	return c.prefix + ":" + k
}

// Get treats any redis or decoding error as a miss.
func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	entry, err := c.lookup(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			slog.Warn("redis cache read failed", "key", key, "err", err)
		}
		return zero, false
	}
	if c.now().Sub(entry.Timestamp) >= c.ttl {
		return zero, false
	}
	return entry.Value, true
}

func (c *Redis[V]) lookup(ctx context.Context, key string) (Entry[V], error) {
	var entry Entry[V]
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entry, ErrMiss
		}
		return entry, err
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, fmt.Errorf("decode entry: %w", err)
	}
	return entry, nil
}

func (c *Redis[V]) Set(ctx context.Context, key string, value V) {
	data, err := json.Marshal(Entry[V]{Value: value, Timestamp: c.now()})
	if err != nil {
		slog.Warn("redis cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		slog.Warn("redis cache write failed", "key", key, "err", err)
	}
}
