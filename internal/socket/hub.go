// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// writeWait bounds a single write to a client.
const writeWait = 10 * time.Second

// sendBuffer is how many events may queue for one client before it is
// considered stalled and dropped.
const sendBuffer = 32

// Message is the envelope sent to every client.
type Message struct {
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts events to all connected WebSocket clients. Each client has
// its own writer goroutine, so Publish never waits on the network.
type Hub struct {
	// clients maps a generated client id to its connection.
	clients map[string]*client
	mu      sync.Mutex
	log     logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     log,
	}
}

// Register adds a connection, starts its writer and returns its client id.
func (h *Hub) Register(conn *websocket.Conn) string {
	id := uuid.New().String()
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[id] = c
	total := len(h.clients)
	h.mu.Unlock()

	go h.writePump(id, c)
	h.log.WithFields(logrus.Fields{"client_id": id, "clients": total}).Info("WebSocket client registered")
	return id
}

// Unregister removes a client and stops its writer.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		h.remove(id, c)
	}
	h.mu.Unlock()
	if ok {
		h.log.WithField("client_id", id).Info("WebSocket client unregistered")
	}
}

// remove must be called with mu held.
func (h *Hub) remove(id string, c *client) {
	if h.clients[id] == c {
		delete(h.clients, id)
		close(c.send)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues the event for every client. A client whose queue is full
// is dropped.
func (h *Hub) Publish(event string, payload any) {
	msg, err := json.Marshal(Message{Event: event, Data: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("Failed to encode WebSocket event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.WithField("client_id", id).Warn("Dropping stalled WebSocket client")
			h.remove(id, c)
		}
	}
}

// writePump is the only writer of data frames to c.conn. It closes the
// connection once the client is removed or a write fails.
func (h *Hub) writePump(id string, c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.WithError(err).WithField("client_id", id).Warn("Dropping WebSocket client")
			h.mu.Lock()
			h.remove(id, c)
			h.mu.Unlock()
			return
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		h.remove(id, c)
	}
}
