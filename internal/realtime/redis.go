package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// envelope is the pub/sub message exchanged between processes.
type envelope struct {
	Origin string          `json:"origin"`
	Topic  string          `json:"topic,omitempty"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// RedisBridge republishes hub events over a redis channel so every process
// behind a load balancer reaches its own clients. Failures are logged and
// the event is lost.
type RedisBridge struct {
	client  *redis.Client
	channel string
	origin  string
	hub     *Hub
	out     chan envelope
}

// NewRedisBridge creates a bridge and attaches it to hub.
func NewRedisBridge(client *redis.Client, channel string, hub *Hub) *RedisBridge {
	b := &RedisBridge{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		hub:     hub,
		out:     make(chan envelope, 256),
	}
	hub.SetRelay(b)
	return b
}

// Forward queues an event for publishing. It never blocks.
func (b *RedisBridge) Forward(topic, event string, data json.RawMessage) {
	select {
	case b.out <- envelope{Origin: b.origin, Topic: topic, Event: event, Data: data}:
	default:
		log.Printf("redis bridge: queue full, dropped %s", event)
	}
}

// Run publishes queued events and delivers events from other processes
// until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()
	incoming := pubsub.Channel()

	log.Printf("redis bridge: relaying on channel %q", b.channel)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-b.out:
			payload, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
				log.Printf("redis bridge: publish %s failed: %v", env.Event, err)
			}
		case msg, ok := <-incoming:
			if !ok {
				return
			}
			b.receive(msg.Payload)
		}
	}
}

func (b *RedisBridge) receive(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		log.Printf("redis bridge: bad payload: %v", err)
		return
	}
	if env.Origin == b.origin || env.Event == "" {
		return
	}
	b.hub.deliverRelayed(env.Topic, env.Event, env.Data)
}
