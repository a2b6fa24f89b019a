// Package realtime fans state-change events out to connected websocket
// clients. Delivery is at-most-once and best-effort: an event that cannot be
// queued for a client is dropped, and clients re-fetch state over HTTP.
package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"hostel-backend/internal/model"
)

// Event names emitted by the API.
const (
	EventRoomsUpdate   = "rooms:update"
	EventBookingUpdate = "booking:update"

	EventChatSystem  = "chat:system"
	EventChatMessage = "chat:message"
	EventChatTyping  = "chat:typing"
	EventChatError   = "chat:error"
)

// Publisher is the emitting side of the hub handed to domain services.
type Publisher interface {
	Broadcast(event string, payload any)
	Emit(topic, event string, payload any)
}

// Relay forwards locally published events to other processes.
type Relay interface {
	Forward(topic, event string, data json.RawMessage)
}

// Frame is the wire format of every websocket message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one websocket connection.
type Client struct {
	ID      string
	Account model.Account

	send   chan []byte
	topics map[string]struct{} // guarded by Hub.mu
}

// NewClient creates a client with an outbox of the given size.
func NewClient(account model.Account, outbox int) *Client {
	return &Client{
		ID:      uuid.NewString(),
		Account: account,
		send:    make(chan []byte, outbox),
		topics:  make(map[string]struct{}),
	}
}

// Outbox returns the channel of encoded frames queued for the client.
func (c *Client) Outbox() <-chan []byte { return c.send }

// Hub tracks connected clients and their topics.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	topics    map[string]map[*Client]struct{}
	observers []func(event string)
	relay     Relay
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		topics:  make(map[string]map[*Client]struct{}),
	}
}

// SetRelay attaches a cross-process relay. Call before serving.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	h.relay = r
	h.mu.Unlock()
}

// Observe registers fn to be called with the name of every broadcast event,
// local or relayed. fn runs on the publisher's goroutine and must not block.
func (h *Hub) Observe(fn func(event string)) {
	h.mu.Lock()
	h.observers = append(h.observers, fn)
	h.mu.Unlock()
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes c from the hub and every topic, then closes its outbox.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for topic := range c.topics {
		h.removeFromTopic(c, topic)
	}
	delete(h.clients, c)
	close(c.send)
}

// Close unregisters every client, closing their outboxes so each write pump
// sends a close frame and drops its connection. It returns how many
// clients were attached.
func (h *Hub) Close() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.clients)
	for c := range h.clients {
		for topic := range c.topics {
			h.removeFromTopic(c, topic)
		}
		delete(h.clients, c)
		close(c.send)
	}
	return n
}

func (h *Hub) Join(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.topics[topic]
	if !ok {
		members = make(map[*Client]struct{})
		h.topics[topic] = members
	}
	members[c] = struct{}{}
	c.topics[topic] = struct{}{}
}

func (h *Hub) Leave(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromTopic(c, topic)
}

func (h *Hub) removeFromTopic(c *Client, topic string) {
	delete(c.topics, topic)
	if members, ok := h.topics[topic]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Members returns the number of clients joined to topic.
func (h *Hub) Members(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, payload any) {
	h.publish("", event, payload, nil)
}

// Emit sends an event to the clients joined to topic.
func (h *Hub) Emit(topic, event string, payload any) {
	h.publish(topic, event, payload, nil)
}

// EmitOthers sends an event to topic members except the sender.
func (h *Hub) EmitOthers(sender *Client, topic, event string, payload any) {
	h.publish(topic, event, payload, sender)
}

// Send queues an event for a single client.
func (h *Hub) Send(c *Client, event string, payload any) {
	frame, _, err := encode(event, payload)
	if err != nil {
		log.Printf("realtime: dropping %s: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		offer(c, event, frame)
	}
}

func (h *Hub) publish(topic, event string, payload any, except *Client) {
	frame, data, err := encode(event, payload)
	if err != nil {
		log.Printf("realtime: dropping %s: %v", event, err)
		return
	}
	h.deliver(topic, event, frame, except)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay != nil && except == nil {
		relay.Forward(topic, event, data)
	}
}

// deliverRelayed hands an event received from another process to local clients.
func (h *Hub) deliverRelayed(topic, event string, data json.RawMessage) {
	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		log.Printf("realtime: dropping relayed %s: %v", event, err)
		return
	}
	h.deliver(topic, event, frame, nil)
}

func (h *Hub) deliver(topic, event string, frame []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.clients
	if topic != "" {
		targets = h.topics[topic]
	} else {
		for _, fn := range h.observers {
			fn(event)
		}
	}
	for c := range targets {
		if c != except {
			offer(c, event, frame)
		}
	}
}

// offer never blocks; a full outbox loses the frame.
func offer(c *Client, event string, frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Printf("realtime: outbox full for client %s, dropped %s", c.ID, event)
	}
}

func encode(event string, payload any) (frame []byte, data json.RawMessage, err error) {
	if payload != nil {
		if data, err = json.Marshal(payload); err != nil {
			return nil, nil, err
		}
	}
	frame, err = json.Marshal(Frame{Event: event, Data: data})
	return frame, data, err
}
