package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pawmatch/pawmatch-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const redisPubSubChannel = "pawmatch:notifications"

// Event types pushed to clients
const (
	EventMatch        = "match"         // both pets liked each other
	EventMatchRequest = "match_request" // a pet asked to match with one of yours
	EventLike         = "like"
	EventComment      = "comment"
)

// Event represents a real-time notification event sent via WebSocket
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub manages WebSocket clients and routes events to members
type Hub struct {
	// Registered clients grouped by member ID
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent

	mu          sync.RWMutex
	instanceID  string
	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

type targetedEvent struct {
	MemberID string
	Event    *Event
}

// NewHub creates a new Hub. redisClient may be nil for single instance deployments.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		instanceID:  uuid.NewString(),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Connected returns the number of open connections of memberID
func (h *Hub) Connected(memberID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[memberID])
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.memberID] == nil {
				h.clients[client.memberID] = make(map[*Client]bool)
			}
			h.clients[client.memberID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-h.ctx.Done():
			return
		}
	}
}

// deliver writes msg to every local connection of the member. A client
// whose buffer is full is dropped.
func (h *Hub) deliver(msg *targetedEvent) {
	data, err := json.Marshal(msg.Event)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Str("type", msg.Event.Type).Msg("ws event marshal failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[msg.MemberID] {
		select {
		case client.send <- data:
		default:
			h.remove(client)
		}
	}
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.memberID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.memberID)
	}
}

// SendToMember delivers an event to memberID's local connections and
// publishes it for the other instances
func (h *Hub) SendToMember(memberID string, event *Event) {
	select {
	case h.broadcast <- &targetedEvent{MemberID: memberID, Event: event}:
	case <-h.ctx.Done():
		return
	}

	if h.redisClient != nil {
		msg := &redisMessage{Origin: h.instanceID, MemberID: memberID, Event: event}
		data, err := json.Marshal(msg)
		if err != nil {
			return
		}
		if err := h.redisClient.Publish(h.ctx, redisPubSubChannel, data).Err(); err != nil {
			logger.GetLogger().Warn().Err(err).Str("member_id", memberID).Msg("ws event publish failed")
		}
	}
}

type redisMessage struct {
	Origin   string `json:"origin"`
	MemberID string `json:"member_id"`
	Event    *Event `json:"event"`
}

// subscribeRedis listens for events published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm redisMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil {
				continue
			}
			// our own publish was already delivered locally
			if rm.Origin == h.instanceID || rm.Event == nil {
				continue
			}
			select {
			case h.broadcast <- &targetedEvent{MemberID: rm.MemberID, Event: rm.Event}:
			case <-h.ctx.Done():
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
