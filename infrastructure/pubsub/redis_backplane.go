package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"shop-relay/contract"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "shop-relay:events"

// RedisBackplane fans room broadcasts out to every relay process through one redis channel.
type RedisBackplane struct {
	client  *redis.Client
	channel string
	log     *slog.Logger
}

var _ contract.Backplane = (*RedisBackplane)(nil)

func NewRedisBackplane(client *redis.Client, channel string, log *slog.Logger) *RedisBackplane {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBackplane{client: client, channel: channel, log: log}
}

// Connect opens a client on addr and checks the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (b *RedisBackplane) Publish(ctx context.Context, env contract.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe blocks, calling handle for every envelope, until ctx is done or the subscription breaks.
func (b *RedisBackplane) Subscribe(ctx context.Context, handle func(ctx context.Context, env contract.Envelope)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	// Wait for the subscription to be confirmed before reading
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("redis subscription to %s closed", b.channel)
			}
			var env contract.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("Invalid backplane envelope", "error", err)
				continue
			}
			handle(ctx, env)
		}
	}
}

func (b *RedisBackplane) Close() error {
	return b.client.Close()
}
