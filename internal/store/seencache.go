package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "jobscout:seen:"

// SeenCache remembers posting keys across runs so repeated harvests do not
// re-announce the same postings. It is optional; the pipeline runs without it.
type SeenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeenCache connects to Redis and verifies the connection.
func NewSeenCache(ctx context.Context, redisURL string, ttl time.Duration) (*SeenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &SeenCache{rdb: rdb, ttl: ttl}, nil
}

// Close releases the client.
func (c *SeenCache) Close() error {
	return c.rdb.Close()
}

// Seen reports whether the key was remembered within the TTL window.
func (c *SeenCache) Seen(ctx context.Context, key string) (bool, error) {
	err := c.rdb.Get(ctx, seenKeyPrefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remember marks the keys as seen for the TTL window.
func (c *SeenCache) Remember(ctx context.Context, keys []string) error {
	pipe := c.rdb.Pipeline()
	for _, key := range keys {
		pipe.Set(ctx, seenKeyPrefix+key, "1", c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
