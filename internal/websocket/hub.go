package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-research-be/internal/pkg/logger"
	"ai-research-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "chat_stream_events"

// Hub fans answer stream events out to every websocket subscriber of a
// conversation, across instances through Redis pub/sub.
type Hub struct {
	// ConversationID -> subscribed clients (multi-tab, multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, nil in single-instance mode
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ConversationID] = append(h.clients[client.ConversationID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client subscribed", map[string]interface{}{"conversation_id": client.ConversationID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ConversationID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ConversationID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ConversationID]) == 0 {
					delete(h.clients, client.ConversationID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish delivers one stream event to every subscriber of the conversation.
// With Redis available the event goes through the shared channel so every
// instance, this one included, delivers exactly once; without Redis it goes
// straight to the local clients.
func (h *Hub) Publish(conversationID uuid.UUID, event pipeline.StreamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	if h.rdb == nil {
		h.deliverLocal(conversationID, data)
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"conversation_id": conversationID.String(),
		"event":           json.RawMessage(data),
	})
	h.rdb.Publish(context.Background(), redisChannel, payload)
}

func (h *Hub) deliverLocal(conversationID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[conversationID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
				"conversation_id": conversationID,
			})
			// Unregister closes Send once it removes the client.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			ConversationID string          `json:"conversation_id"`
			Event          json.RawMessage `json:"event"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		conversationID, err := uuid.Parse(payload.ConversationID)
		if err != nil {
			continue
		}

		h.deliverLocal(conversationID, payload.Event)
	}
}
