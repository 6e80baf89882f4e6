package settings

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var redisSettingsHash string = "settings"

// RedisStore reads settings from a redis hash, so an external config tool can
// update values while the daemon runs. Reads are never cached here: the
// engine deliberately re-reads configuration on every event.
type RedisStore struct {
	Client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(redisURL string) (*RedisStore, error) {
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
	return &RedisStore{Client: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.Client.HGet(ctx, redisSettingsHash, key).Result()
	if err == redis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, val string) error {
	return s.Client.HSet(ctx, redisSettingsHash, key, val).Err()
}
