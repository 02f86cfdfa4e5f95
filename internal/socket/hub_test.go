package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruit-store-api-server/internal/logger"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubPublish(t *testing.T) {
	hub := NewHub(logger.Discard())
	srv := newTestServer(t, hub)

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	hub.Publish("order.created", map[string]any{"status": "Pending"})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Event     string         `json:"event"`
			Data      map[string]any `json:"data"`
			Timestamp time.Time      `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "order.created", msg.Event)
		assert.Equal(t, "Pending", msg.Data["status"])
		assert.False(t, msg.Timestamp.IsZero())
	}
}

func TestHubUnregisterAndClose(t *testing.T) {
	hub := NewHub(logger.Discard())
	srv := newTestServer(t, hub)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Unregister("no-such-client")
	assert.Equal(t, 1, hub.Count())

	hub.Close()
	assert.Zero(t, hub.Count())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestHubPublish_NoClients(t *testing.T) {
	hub := NewHub(logger.Discard())
	assert.NotPanics(t, func() { hub.Publish("order.deleted", nil) })
}

func TestHubPublish_DropsStalledClient(t *testing.T) {
	hub := NewHub(logger.Discard())
	stalled := &client{send: make(chan []byte, 1)}
	hub.clients["stalled"] = stalled

	done := make(chan struct{})
	go func() {
		hub.Publish("order.created", nil)
		hub.Publish("order.updated", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a client that does not read")
	}

	assert.Zero(t, hub.Count())
	msg, ok := <-stalled.send
	require.True(t, ok)
	assert.Contains(t, string(msg), `"event":"order.created"`)
	_, ok = <-stalled.send
	assert.False(t, ok, "queue is closed once the client is dropped")
}
