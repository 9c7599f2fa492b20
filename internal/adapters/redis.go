package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

// RedisSessionRepo keeps console session tokens in redis, one key per profile.
type RedisSessionRepo struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepo connects to the configured redis server and checks that it is reachable.
func NewRedisSessionRepo(ctx context.Context, cfg config.RedisConfig) (*RedisSessionRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Address, err)
	}

	return NewRedisSessionRepoFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

func NewRedisSessionRepoFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisSessionRepo {
	return &RedisSessionRepo{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisSessionRepo) key(profile string) string {
	return r.prefix + profile
}

// LoadToken returns domain.ErrNotFound if no token is stored or the token expired.
func (r *RedisSessionRepo) LoadToken(ctx context.Context, profile string) (string, error) {
	token, err := r.redis.Get(ctx, r.key(profile)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisSessionRepo) SaveToken(ctx context.Context, profile, token string) error {
	return r.redis.Set(ctx, r.key(profile), token, r.ttl).Err()
}

func (r *RedisSessionRepo) DeleteToken(ctx context.Context, profile string) error {
	return r.redis.Del(ctx, r.key(profile)).Err()
}

func (r *RedisSessionRepo) Close() error {
	return r.redis.Close()
}
