package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rajasatyajit/CivicTriage/config"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	redis "github.com/redis/go-redis/v9"
)

// NewRedis connects to Redis. It returns (nil, nil) when no URL is
// configured; Redis-backed features are optional.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		logger.Info("REDIS_URL not set; geocode cache and rate limiting disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opt.DB = cfg.DB
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis connection established", "addr", opt.Addr, "db", opt.DB)
	return client, nil
}
