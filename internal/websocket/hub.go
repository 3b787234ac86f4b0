package websocket

import (
	"context"
	"encoding/json"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// envelope is what travels over Redis between instances.
type envelope struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

// Hub fans handoff notifications out to every connected agent console, on
// this instance directly and on the others through Redis pub/sub.
type Hub struct {
	// agent id -> open consoles (an agent may have several tabs)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	rdb      redis.UniversalClient
	instance string
	logger   logger.ILogger
}

func NewHub(rdb redis.UniversalClient, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		rdb:        rdb,
		instance:   uuid.NewString(),
		logger:     log,
	}
}

// Run owns the client map until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.clients {
				for _, c := range clients {
					close(c.Send)
				}
			}
			h.clients = make(map[string][]*Client)
			return

		case client := <-h.register:
			h.clients[client.AgentID] = append(h.clients[client.AgentID], client)
			h.logger.Info("Hub", "Agent console connected", map[string]interface{}{"agent_id": client.AgentID})

		case client := <-h.unregister:
			h.remove(client)

		case data := <-h.broadcast:
			for _, clients := range h.clients {
				for _, c := range clients {
					select {
					case c.Send <- data:
					default:
						h.logger.Warn("Hub", "Console buffer full, disconnecting", map[string]interface{}{"agent_id": c.AgentID})
						h.remove(c)
					}
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.AgentID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.AgentID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.AgentID]) == 0 {
		delete(h.clients, client.AgentID)
		h.logger.Info("Hub", "Agent console disconnected", map[string]interface{}{"agent_id": client.AgentID})
	}
}

// BroadcastHandoff implements service.HandoffDelivery.
func (h *Hub) BroadcastHandoff(n dto.HandoffNotification) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "handoff",
		"data": n,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode handoff", map[string]interface{}{"error": err.Error()})
		return
	}

	h.broadcast <- data

	if h.rdb != nil {
		payload, _ := json.Marshal(envelope{Origin: h.instance, Message: data})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			// already delivered locally
			if env.Origin == h.instance {
				continue
			}
			h.broadcast <- env.Message
		}
	}
}
