// Package cache keeps shortID -> originalURL pairs in Redis in front of the store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = time.Hour
	keyPrefix  = "shortlink:target:"
)

// Redis implements shortener.TargetCache. Redis failures degrade to cache misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to addr and checks the connection.
func New(ctx context.Context, addr string, ttl time.Duration, logger *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewWithClient(client, ttl, logger), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Get(ctx context.Context, shortID string) (string, bool) {
	target, err := r.client.Get(ctx, keyPrefix+shortID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache get failed", "short_id", shortID, "error", err)
		}
		return "", false
	}
	return target, true
}

func (r *Redis) Set(ctx context.Context, shortID, originalURL string) {
	if err := r.client.Set(ctx, keyPrefix+shortID, originalURL, r.ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", "short_id", shortID, "error", err)
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
