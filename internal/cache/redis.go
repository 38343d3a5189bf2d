package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// UserIDs caches the Paymo user id resolved for a credential.
// Key format: paymo:me:<sha256(credential)[:16]>
type UserIDs struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewUserIDs wraps client; entries expire after ttl.
func NewUserIDs(client redis.Cmdable, ttl time.Duration) *UserIDs {
	return &UserIDs{client: client, ttl: ttl}
}

// Key derives the cache key for a credential without storing the credential itself.
func Key(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return "paymo:me:" + hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached id for key. found is false on a miss.
func (c *UserIDs) Get(ctx context.Context, key string) (id int64, found bool, err error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("user cache get: %w", err)
	}
	id, err = strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("user cache value %q: %w", v, err)
	}
	return id, true, nil
}

// Set stores id under key.
func (c *UserIDs) Set(ctx context.Context, key string, id int64) error {
	if err := c.client.Set(ctx, key, strconv.FormatInt(id, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("user cache set: %w", err)
	}
	return nil
}
