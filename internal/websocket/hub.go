package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"quicky-client/internal/models"
	"quicky-client/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client wraps a connection with a write lock. gorilla/websocket allows
// only one concurrent writer per connection, and both the broadcast
// loop and the on-connect status push write to the same conn.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans the backend status channel out to every connected client.
// The status feed is broadcast, not per-user; clients connect without
// credentials and receive the current status immediately, then every
// change as it is published on Redis.
type Hub struct {
	mu          sync.RWMutex
	clients     []*client
	redisClient *redis.Client
	health      *services.HealthService
	cancel      context.CancelFunc
}

func NewHub(redisClient *redis.Client, health *services.HealthService) *Hub {
	return &Hub{
		redisClient: redisClient,
		health:      health,
	}
}

// Run subscribes to the status channel and broadcasts until the context
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)
	go h.subscribe(ctx)
}

// Stop ends the pub/sub subscription and closes every connection.
func (h *Hub) Stop() {
	if h.cancel != nil {
		h.cancel()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		c.conn.Close()
	}
	h.clients = nil
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := h.register(conn)

	// Push the current status so a fresh client does not wait for the
	// next change.
	h.sendStatus(c)

	go func() {
		defer h.unregister(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) register(conn *websocket.Conn) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &client{conn: conn}
	h.clients = append(h.clients, c)
	log.Printf("WebSocket connected (total: %d)", len(h.clients))
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()
	for i, other := range h.clients {
		if other == c {
			h.clients = append(h.clients[:i], h.clients[i+1:]...)
			break
		}
	}
	log.Printf("WebSocket disconnected (total: %d)", len(h.clients))
}

func (h *Hub) subscribe(ctx context.Context) {
	pubsub := h.redisClient.Subscribe(ctx, services.StatusChannel)
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
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		c.send(data)
	}
}

func (h *Hub) sendStatus(c *client) {
	msg := models.WSMessage{
		Type:    "backend_status",
		Payload: h.health.Status(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.send(data)
}
