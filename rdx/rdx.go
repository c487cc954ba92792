package rdx

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Init connects to Redis. REDIS_URL defaults to a local instance.
func Init(ctx context.Context) error {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	Conn = redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := Conn.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// CacheSet stores a value with TTL. Errors are logged, not returned; the
// cache is an optimization, never a source of truth.
func CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if Conn == nil {
		return
	}
	if err := Conn.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Println("redis SET error:", err)
	}
}

// CacheGet returns the cached value and whether it was present.
func CacheGet(ctx context.Context, key string) (string, bool) {
	if Conn == nil {
		return "", false
	}
	val, err := Conn.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Println("redis GET error:", err)
		}
		return "", false
	}
	return val, true
}

// Publish pushes a payload onto a pub/sub channel. Best-effort.
func Publish(ctx context.Context, channel string, payload []byte) {
	if Conn == nil {
		return
	}
	if err := Conn.Publish(ctx, channel, payload).Err(); err != nil {
		log.Println("redis PUBLISH error:", err)
	}
}
