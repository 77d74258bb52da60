package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "session:"
	defaultTimeout = 5 * time.Second
)

type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore shares sessions between service instances. Keys carry no TTL.
type RedisStore struct {
	client redisClient
}

func NewRedisStore(client redisClient) *RedisStore {
	return &RedisStore{client: client}
}

// ConnectRedis creates a client and validates connectivity with a ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

func (s *RedisStore) Set(ctx context.Context, token string, userID uint64) error {
	if err := s.client.Set(ctx, keyPrefix+token, strconv.FormatUint(userID, 10), 0).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (uint64, error) {
	value, err := s.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("session get: %w", err)
	}

	userID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("session get: malformed user id %q: %w", value, err)
	}
	return userID, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, keyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("session delete: %w", err)
	}
	return n > 0, nil
}
