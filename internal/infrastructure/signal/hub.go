package signal

import (
	"fmt"
	"sync"
	"time"

	"livecast/internal/core/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Envelope is the wire format: one named event plus its payload.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// client wraps one websocket connection. gorilla permits a single concurrent
// writer, so every write (including pings) goes through the client's mutex.
type client struct {
	id   domain.ConnID
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(timeout time.Duration, v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return c.conn.WriteJSON(v)
}

func (c *client) ping(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Hub tracks live websocket clients by connection id and implements
// ports.Sender for the services.
type Hub struct {
	clients      map[domain.ConnID]*client
	mu           sync.RWMutex
	writeTimeout time.Duration
	logger       *zap.SugaredLogger
}

func NewHub(writeTimeout time.Duration, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:      make(map[domain.ConnID]*client),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) remove(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

func (h *Hub) get(id domain.ConnID) (*client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// Send delivers one event to one connection. Fire-and-forget from the
// services' perspective; the error is for the caller's log line only.
func (h *Hub) Send(id domain.ConnID, event string, payload interface{}) error {
	c, ok := h.get(id)
	if !ok {
		return fmt.Errorf("connection %s not connected", id)
	}
	return c.write(h.writeTimeout, Envelope{Type: event, Payload: payload})
}

func (h *Hub) IsConnected(id domain.ConnID) bool {
	_, ok := h.get(id)
	return ok
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
