package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ParadoxMajor/highlight-feeder/highlight"
	"github.com/ParadoxMajor/highlight-feeder/highlight/cachestore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/countstore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/feedclient"
	"github.com/ParadoxMajor/highlight-feeder/highlight/seenstore"
	"github.com/ParadoxMajor/highlight-feeder/highlight/settings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	streamHost string
	logger     *slog.Logger
	engine     *highlight.Engine
	rdb        *redis.Client
	lastSeq    int64
}

type Config struct {
	StreamHost       string
	FeedHost         string
	FeedAuthToken    string
	FeedCommunity    string
	RedisURL         string
	SettingsFileJSON string
	FeedAPIRateLimit int
	Logger           *slog.Logger
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var cfg settings.Store
	var seen seenstore.SeenStore
	var counters countstore.CountStore
	var cache cachestore.CacheStore
	var rdb *redis.Client
	if config.RedisURL != "" {
		// generic client, for cursor state
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		rdb = redis.NewClient(opt)
		// check redis connection
		_, err = rdb.Ping(context.TODO()).Result()
		if err != nil {
			return nil, fmt.Errorf("redis ping failed: %v", err)
		}

		st, err := settings.NewRedisStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis settings store: %v", err)
		}
		cfg = st

		sn, err := seenstore.NewRedisSeenStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis seenstore: %v", err)
		}
		seen = sn

		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %v", err)
		}
		counters = cnt

		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, 30*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %v", err)
		}
		cache = csh
	} else {
		mem := settings.NewMemStore()
		if config.SettingsFileJSON != "" {
			if err := mem.LoadFromFileJSON(config.SettingsFileJSON); err != nil {
				return nil, fmt.Errorf("loading settings file: %v", err)
			}
			logger.Info("loaded settings from JSON", "path", config.SettingsFileJSON)
		}
		cfg = mem
		seen = seenstore.NewMemSeenStore()
		counters = countstore.NewMemCountStore()
		cache = cachestore.NewMemCacheStore(5_000, 30*time.Minute)
	}

	engine := highlight.Engine{
		Logger:        logger,
		Settings:      cfg,
		Seen:          seen,
		Counters:      counters,
		Cache:         cache,
		Client:        feedclient.NewHTTPClient(config.FeedHost, config.FeedAuthToken, config.FeedAPIRateLimit),
		FeedCommunity: config.FeedCommunity,
	}

	s := &Server{
		streamHost: config.StreamHost,
		logger:     logger,
		engine:     &engine,
		rdb:        rdb,
	}

	return s, nil
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

var cursorKey = "feederd/seq"

func (s *Server) ReadLastCursor(ctx context.Context) (int64, error) {
	// if redis isn't configured, just skip
	if s.rdb == nil {
		s.logger.Info("redis not configured, skipping cursor read")
		return 0, nil
	}

	val, err := s.rdb.Get(ctx, cursorKey).Int64()
	if err == redis.Nil {
		s.logger.Info("no pre-existing cursor in redis")
		return 0, nil
	}
	s.logger.Info("successfully found prior subscription cursor seq in redis", "seq", val)
	return val, err
}

func (s *Server) PersistCursor(ctx context.Context) error {
	// if redis isn't configured, just skip
	if s.rdb == nil {
		return nil
	}
	if s.lastSeq <= 0 {
		return nil
	}
	err := s.rdb.Set(ctx, cursorKey, s.lastSeq, 14*24*time.Hour).Err()
	return err
}

// this method runs in a loop, persisting the current cursor state every 5 seconds
func (s *Server) RunPersistCursor(ctx context.Context) error {

	// if redis isn't configured, just skip
	if s.rdb == nil {
		return nil
	}
	ticker := time.NewTicker(5 * time.Second)
	for {
		select {
		case <-ctx.Done():
			if s.lastSeq >= 1 {
				s.logger.Info("persisting final cursor seq value", "seq", s.lastSeq)
				err := s.PersistCursor(ctx)
				if err != nil {
					s.logger.Error("failed to persist cursor", "err", err, "seq", s.lastSeq)
				}
			}
			return nil
		case <-ticker.C:
			if s.lastSeq >= 1 {
				err := s.PersistCursor(ctx)
				if err != nil {
					s.logger.Error("failed to persist cursor", "err", err, "seq", s.lastSeq)
				}
			}
		}
	}
}
