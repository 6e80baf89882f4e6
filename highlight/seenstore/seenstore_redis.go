package seenstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisSeenPrefix string = "crossposted:"

type RedisSeenStore struct {
	Client *redis.Client
}

var _ SeenStore = (*RedisSeenStore)(nil)

func NewRedisSeenStore(redisURL string) (*RedisSeenStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisSeenStore{Client: rdb}, nil
}

func (s *RedisSeenStore) Seen(ctx context.Context, postID string) (bool, error) {
	n, err := s.Client.Exists(ctx, redisSeenPrefix+postID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSeenStore) MarkSeen(ctx context.Context, postID string, ttl time.Duration) error {
	return s.Client.Set(ctx, redisSeenPrefix+postID, "1", ttl).Err()
}

func (s *RedisSeenStore) MarkSeenOnce(ctx context.Context, postID string, ttl time.Duration) (bool, error) {
	return s.Client.SetNX(ctx, redisSeenPrefix+postID, "1", ttl).Result()
}

func (s *RedisSeenStore) Clear(ctx context.Context, postID string) error {
	return s.Client.Del(ctx, redisSeenPrefix+postID).Err()
}
