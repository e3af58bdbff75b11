package database

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/redis/go-redis/v9"
)

// RedisClient backs reset codes, the article cache and the forgot-password limiter.
var RedisClient *redis.Client

// redisOptions parses a redis:// or rediss:// URI and applies the pool settings.
func redisOptions(redisURI string) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URI: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	return opt, nil
}

func ConnectRedis(redisURI string) error {
	opt, err := redisOptions(redisURI)
	if err != nil {
		return err
	}
	RedisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}

	logger.Info("✅ Connected to Redis", "addr", opt.Addr, "db", opt.DB)
	return nil
}

func DisconnectRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}
