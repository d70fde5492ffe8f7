// Package pubsub publishes queue events to Redis channels so fan-out keeps
// working when realtime listeners connect to a different process.
package pubsub

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "queue."

type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to Redis and verifies the connection. Returns
// nil when addr is empty or the server is unreachable; callers degrade to
// in-process fan-out only.
func NewRedisPublisher(addr, password string, db int) *RedisPublisher {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(scope string, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.client.Publish(ctx, channelPrefix+scope, payload).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
