package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yardimli/learn-with-ai-sub000/pkg/config"
)

// KeyPrefix namespaces every key written by this service.
const KeyPrefix = "calendar"

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Key joins parts under KeyPrefix, e.g. Key("plan", id) -> "calendar:plan:<id>".
func Key(parts ...string) string {
	return KeyPrefix + ":" + strings.Join(parts, ":")
}
