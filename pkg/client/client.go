package client

import (
	"context"
	"time"

	"capirelay/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Client holds the optional shared backends of a relay process.
type Client struct {
	Redis *redis.Client
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetRedis(log *logger.Logger, addr string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: connTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis",
			"error", err,
			"addr", addr,
		)
	}

	log.Info("Successfully connected to Redis", "addr", addr)
	c.Redis = client
}

// PingRedis is a readiness check for the shared idempotency store.
func (c *Client) PingRedis(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Redis == nil {
		return
	}
	if err := c.Redis.Close(); err != nil {
		log.Error("Failed to close Redis client", "error", err)
		return
	}
	log.Info("Redis client closed")
}
