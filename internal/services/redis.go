package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/Jen9x/TapRide/pkg/logger"
)

// StatusChannel is the pub/sub channel shared by every API instance.
const StatusChannel = "driver:status:updates"

// InitRedis parses redisURL and checks the connection.
func InitRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

type statusEnvelope struct {
	Origin string             `json:"origin"`
	Update DriverStatusUpdate `json:"update"`
}

// RedisStatusPublisher forwards status updates to other instances. Each
// instance tags its messages so its own relay can skip them.
type RedisStatusPublisher struct {
	client   *redis.Client
	instance string
}

func NewRedisStatusPublisher(client *redis.Client) *RedisStatusPublisher {
	return &RedisStatusPublisher{client: client, instance: uuid.NewString()}
}

func (p *RedisStatusPublisher) PublishStatus(ctx context.Context, update DriverStatusUpdate) error {
	data, err := json.Marshal(statusEnvelope{Origin: p.instance, Update: update})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, StatusChannel, data).Err()
}

// Relay feeds updates published by other instances into the local hub until
// ctx is done.
func (p *RedisStatusPublisher) Relay(ctx context.Context, hub *Hub, log logger.ILogger) {
	sub := p.client.Subscribe(ctx, StatusChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env statusEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warning("invalid status message on redis", logger.Error(err))
				continue
			}
			if env.Origin == p.instance {
				continue
			}
			if err := hub.PublishStatus(ctx, env.Update); err != nil {
				log.Warning("relay status update failed", logger.Error(err))
			}
		}
	}
}

// NewRateLimitStore keeps rate-limit windows in Redis so every instance
// shares them.
func NewRateLimitStore(client *redis.Client) (limiter.Store, error) {
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "ratelimit"})
}
