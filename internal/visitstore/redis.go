package visitstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BernardRegaspi/portfolio/internal/preloader"
	backend "github.com/redis/go-redis/v9"
)

// Redis keeps each session's flags in one hash whose TTL is refreshed on write.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*Redis)

// WithTTL sets the expiration of a session's flags. Zero means none.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// NewRedis connects to a Redis server.
func NewRedis(address, password string, db int, opts ...RedisOption) *Redis {
	return NewRedisFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisFromClient uses an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "portfolio:visit:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Scope(sessionID string) preloader.Storage {
	if sessionID == "" {
		return emptySession()
	}
	return redisScope{r: r, key: r.prefix + sessionID}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type redisScope struct {
	r   *Redis
	key string
}

func (s redisScope) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := s.r.client.HGet(ctx, s.key, field).Result()
	if errors.Is(err, backend.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get from redis: %w", err)
	}
	return v, true, nil
}

func (s redisScope) Set(ctx context.Context, field, value string) error {
	pipe := s.r.client.TxPipeline()
	pipe.HSet(ctx, s.key, field, value)
	if s.r.ttl > 0 {
		pipe.Expire(ctx, s.key, s.r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s redisScope) Delete(ctx context.Context, field string) error {
	if err := s.r.client.HDel(ctx, s.key, field).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}
