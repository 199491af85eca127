// Package cache is the Redis-backed snapshot cache for computed DNA
// profiles. A cache miss or a Redis error never fails the read path; the
// service falls back to the record.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"helix/internal/platform/redis"
	"helix/internal/player"
	id "helix/pkg/domain"
)

const defaultTTL = 15 * time.Minute

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type Option func(*Redis)

func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) { r.ttl = ttl }
}

func NewRedis(client *redis.Client, opts ...Option) *Redis {
	r := &Redis{client: client, ttl: defaultTTL}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func key(userID id.UserID) string {
	return "dna:snapshot:" + userID.String()
}

func (r *Redis) Get(ctx context.Context, userID id.UserID) (*player.Profile, error) {
	raw, err := r.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var p player.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &p, nil
}

func (r *Redis) Set(ctx context.Context, userID id.UserID, profile player.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, key(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, userID id.UserID) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
