package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const eventChannel = "helpdesk:ticket-events"

// redisBridge decorates a local dispatcher with Redis pub/sub so that
// every instance sees events from every other instance. Local handlers
// receive events through the inner dispatcher in both cases; remote
// events are tagged with the origin instance and skipped at the origin
// to avoid double delivery.
type redisBridge struct {
	inner      Dispatcher
	client     *redis.Client
	instanceID string
	logger     *zap.Logger
}

type wireEvent struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// NewRedisBridge wraps inner with a Redis pub/sub fanout. The returned
// dispatcher starts a background receive loop bound to ctx.
func NewRedisBridge(ctx context.Context, inner Dispatcher, client *redis.Client, instanceID string, logger *zap.Logger) Dispatcher {
	bridge := &redisBridge{
		inner:      inner,
		client:     client,
		instanceID: instanceID,
		logger:     logger,
	}
	go bridge.receive(ctx)
	return bridge
}

// Publish delivers locally then broadcasts to other instances.
func (b *redisBridge) Publish(ctx context.Context, event Event) error {
	if err := b.inner.Publish(ctx, event); err != nil {
		return err
	}
	payload, err := json.Marshal(wireEvent{Origin: b.instanceID, Event: event})
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		b.logger.Warn("redis event broadcast failed", zap.Error(err))
	}
	return nil
}

// Subscribe registers a local handler.
func (b *redisBridge) Subscribe(eventType EventType, handler EventHandler) {
	b.inner.Subscribe(eventType, handler)
}

func (b *redisBridge) receive(ctx context.Context) {
	sub := b.client.Subscribe(ctx, eventChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var wire wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &wire); err != nil {
				b.logger.Warn("malformed remote event", zap.Error(err))
				continue
			}
			if wire.Origin == b.instanceID {
				continue
			}
			_ = b.inner.Publish(ctx, wire.Event)
		}
	}
}
