package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/optihealth/platform/pkg/common/config"
	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// RedisOptions sizes the client for the dashboard cache: short timeouts and a
// single retry.
func RedisOptions(cfg *config.Config) *redis.Options {
	timeout := cfg.RedisTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		DialTimeout:  4 * timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   1,
	}
}

// GetRedis returns the shared client. A failed ping is logged but the client is
// still returned; callers treat Redis as an optional cache.
func GetRedis() *redis.Client {
	redisOnce.Do(func() {
		opts := RedisOptions(config.Load())
		redisClient = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Log.WithError(err).WithField("addr", opts.Addr).Warn("Redis unavailable, dashboard cache disabled until it recovers")
			return
		}
		logger.Log.WithField("addr", opts.Addr).Info("Connected to Redis")
	})

	return redisClient
}

func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
