package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "cache:"
	redisTagPrefix = "cache-tag:"
)

// RedisService keeps each response under cache:<key> and a set of keys per tag.
type RedisService struct {
	client redis.UniversalClient
}

func NewRedisService(client redis.UniversalClient) *RedisService {
	return &RedisService{client: client}
}

func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (s *RedisService) Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+key, data, duration)
		for _, tag := range tags {
			pipe.SAdd(ctx, redisTagPrefix+tag, key)
			// tag sets outlive their members by at most one duration
			pipe.Expire(ctx, redisTagPrefix+tag, duration)
		}
		return nil
	})
	return err
}

func (s *RedisService) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (s *RedisService) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		keys, err := s.client.SMembers(ctx, redisTagPrefix+tag).Result()
		if err != nil {
			return err
		}
		toDelete := make([]string, 0, len(keys)+1)
		for _, key := range keys {
			toDelete = append(toDelete, redisKeyPrefix+key)
		}
		toDelete = append(toDelete, redisTagPrefix+tag)
		if err := s.client.Del(ctx, toDelete...).Err(); err != nil {
			return err
		}
	}
	return nil
}
