// websocket/hub.go
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"crmhub/logger"
	"crmhub/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsClient struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

type wsHub struct {
	mutex   sync.Mutex
	clients map[string]map[*wsClient]bool
}

var hub = &wsHub{
	clients: make(map[string]map[*wsClient]bool),
}

func (h *wsHub) register(c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*wsClient]bool)
	}
	h.clients[c.userID][c] = true
}

func (h *wsHub) unregister(c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if clients, ok := h.clients[c.userID]; ok {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
			if len(clients) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
}

// ServeWS upgrades the connection and registers the socket under the
// authenticated user. The token travels as a query parameter because
// browsers cannot set headers on WebSocket connections.
func ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := utils.ValidateJWT(token)
	if err != nil || claims == nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithField("userID", claims.UserID).Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		userID: claims.UserID,
		conn:   conn,
		send:   make(chan []byte, 16),
	}
	hub.register(client)
	logger.WithField("userID", claims.UserID).Debug("websocket client connected")

	go client.writePump()
	go client.readPump()
}

func (c *wsClient) readPump() {
	defer func() {
		hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// Clients only listen; any read error means disconnect
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
