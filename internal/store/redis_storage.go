package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps each record as a redis hash.
type RedisStorage struct {
	rdb redis.UniversalClient
}

func (s *RedisStorage) Conn() redis.UniversalClient {
	return s.rdb
}

func (s *RedisStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	if expiresIn <= 0 {
		return s.Save(ctx, key, val)
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, val)
	pipe.Expire(ctx, key, expiresIn)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStorage) Save(ctx context.Context, key string, val any) error {
	return s.rdb.HSet(ctx, key, val).Err()
}

func (s *RedisStorage) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func NewRedisStorage(rdb redis.UniversalClient) *RedisStorage {
	return &RedisStorage{
		rdb: rdb,
	}
}
