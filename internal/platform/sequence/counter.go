// Package sequence provides the human-readable case number generator: a
// durable, atomically incrementing counter scoped by a rolling date
// prefix, formatted as PREFIX-SEQUENCE-SUFFIX.
package sequence

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Counter is an atomic increment-and-fetch operation against a durable
// counter keyed by prefix. Implementations must be safe for concurrent
// use: two callers must never observe the same value for the same key.
type Counter interface {
	Next(ctx context.Context, key string) (int64, error)
}

// RedisCounter implements Counter with redis INCR, which is atomic on
// the server side.
type RedisCounter struct {
	c      *redis.Client
	prefix string
}

func NewRedisCounter(c *redis.Client) *RedisCounter {
	return &RedisCounter{c: c, prefix: "ewea:case:seq:"}
}

func (r *RedisCounter) Next(ctx context.Context, key string) (int64, error) {
	n, err := r.c.Incr(ctx, r.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return n, nil
}
