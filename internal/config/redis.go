package config

// Redis backs the response cache and the rate limiter for public venue
// browsing.  Both features degrade gracefully: when no connection can be
// established at startup this constructor returns nil and the middleware
// pass requests straight through.

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from the environment:
// REDIS_ADDR (host:port, default localhost:6379), REDIS_PASSWORD and
// REDIS_DB.  It pings with a short timeout and returns nil on failure.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

// CacheTTL returns the lifetime of cached venue responses (CACHE_TTL,
// default 30s).
func CacheTTL() time.Duration {
	return envDuration("CACHE_TTL", 30*time.Second)
}

// RateLimit returns the request budget per client and window for public
// endpoints (RATE_LIMIT_MAX / RATE_LIMIT_WINDOW, default 60 per minute).
func RateLimit() (max int, window time.Duration) {
	max = 60
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}
	return max, envDuration("RATE_LIMIT_WINDOW", time.Minute)
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
