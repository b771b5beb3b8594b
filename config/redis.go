package config

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs core/lock so sync passes and settings writes are
// serialized across processes. Nil means in-process locks only.
var RedisClient *redis.Client

// InitRedis connects to REDIS_ADDR and keeps the client only if it answers a
// ping. It reports a status line for startup logs.
func InitRedis(ctx context.Context) string {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return "Redis not configured, using in-process locks."
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		RedisClient = nil
		return "Redis configured but not reachable, using in-process locks."
	}
	RedisClient = client
	return "Redis connection successful."
}
