// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fruit-store-api-server/internal/socket"
)

// pongWait is how long a client may stay silent before it is dropped.
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Base
	Hub *socket.Hub
}

// ServeWs upgrades the request and streams order events until the client
// goes away. Incoming messages are ignored; pings extend the deadline.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger().WithError(err).Warn("Failed to upgrade connection")
		return
	}

	id := h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(id)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger().WithError(err).WithField("client_id", id).Warn("Unexpected WebSocket close")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
