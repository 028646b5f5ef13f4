package events

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// DefaultChannel is the Redis pub/sub channel events are published to.
const DefaultChannel = "fundledger.events"

// RedisPublisher publishes events to a Redis pub/sub channel so other
// processes can follow ledger activity.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     *logger.Logger
}

// NewRedisPublisher creates a Redis-backed publisher. An empty channel uses
// DefaultChannel.
func NewRedisPublisher(client *redis.Client, channel string, log *logger.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.NewDefault("events")
	}
	return &RedisPublisher{client: client, channel: channel, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) {
	payload, err := json.Marshal(NewEnvelope(evt))
	if err != nil {
		p.log.WithError(err).Warn("marshal event")
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.WithError(err).WithField("event", evt.EventType()).Warn("publish event to redis")
	}
}
