package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/api"
	"github.com/linesmerrill/pickup-notify-api/models"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer is how many events a connection may fall behind before it is dropped
	sendBuffer = 16
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients send no Origin
	},
}

// client is one live connection. Publish only enqueues; writePump owns the socket writes.
type client struct {
	conn *websocket.Conn
	send chan interface{}

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan interface{}, sendBuffer)}
}

// enqueue never blocks. It reports false when the client is closed or its buffer is full.
func (c *client) enqueue(v interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) writePump(userID string) {
	defer c.conn.Close()
	for v := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(v); err != nil {
			zap.S().Warnw("failed to send live notification", "userId", userID, "error", err)
			return
		}
	}
}

// NotificationHub tracks live connections per user and pushes stored notifications
// to them as they are created
type NotificationHub struct {
	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

// NewNotificationHub creates an empty hub
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{clients: make(map[string]map[*client]struct{})}
}

// Connected is the number of open connections for userID
func (h *NotificationHub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Publish queues the notification on every open connection of recipientID. A
// connection that has fallen too far behind is dropped instead of blocking the caller.
func (h *NotificationHub) Publish(recipientID string, notification models.Notification) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[recipientID]))
	for c := range h.clients[recipientID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	event := map[string]interface{}{
		"event": "new_notification",
		"data":  notification,
	}
	for _, c := range targets {
		if !c.enqueue(event) {
			zap.S().Warnw("live notification connection is behind, dropping it", "userId", recipientID)
			h.remove(recipientID, c)
			c.close()
		}
	}
}

func (h *NotificationHub) add(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *NotificationHub) remove(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// HandleNotificationsWebSocket upgrades an authenticated request and keeps the
// connection registered until the client goes away
func (h *NotificationHub) HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, ok := api.ClaimsFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade error", "error", err)
		return
	}

	userID := claims.Subject
	c := newClient(conn)
	h.add(userID, c)
	go c.writePump(userID)
	zap.S().Debugw("user connected to /ws/notifications", "userId", userID)

	defer func() {
		h.remove(userID, c)
		c.close()
		conn.Close()
		zap.S().Debugw("user disconnected from /ws/notifications", "userId", userID)
	}()

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
