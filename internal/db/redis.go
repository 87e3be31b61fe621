package db

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to the shared Redis used for cross-instance rate
// limiting. Returns nil when the ping fails: the limiter then runs on the
// in-process fallback instead of blocking startup.
func InitRedis(addr, password string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable at %s, falling back to in-memory rate limiting: %v", addr, err)
		return nil
	}
	return client
}
