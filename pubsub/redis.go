package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"iris-api/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "iris:notifications:"

// RedisBroadcaster fans notifications out across API instances through
// Redis pub/sub, one channel per recipient.
type RedisBroadcaster struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisBroadcaster(client *redis.Client, logger *zap.Logger) *RedisBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroadcaster{client: client, logger: logger}
}

func channelFor(userID string) string {
	return channelPrefix + userID
}

func (b *RedisBroadcaster) Publish(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, channelFor(n.RecipientID), body).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context, userID string) (<-chan models.Notification, error) {
	ps := b.client.Subscribe(ctx, channelFor(userID))
	// wait for the subscription confirmation so errors surface here
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan models.Notification, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var n models.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					b.logger.Warn("discarding malformed notification event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
