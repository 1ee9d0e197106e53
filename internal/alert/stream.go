package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/EdgesSeeker/ma-monitor/internal/monitor"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

const (
	writeWait     = 10 * time.Second
	clientBacklog = 16
)

// Hub pushes fired alerts to connected WebSocket clients, so a
// journal UI can show them without polling. It implements
// monitor.Notifier; delivery is best effort and a slow client is
// dropped rather than allowed to stall the rest.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a new alert stream hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*client]struct{}),
	}
}

// Notify broadcasts the alert to every connected client
func (h *Hub) Notify(ctx context.Context, alert monitor.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client is not keeping up; its writer will close it
		}
	}

	return nil
}

// ServeHTTP upgrades the connection and streams alerts until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientBacklog),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Info("Alert stream client connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
			return
		}
	}
}

// readLoop drains the connection so close frames are processed
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
	h.logger.WithField("clients", len(h.clients)).Info("Alert stream client disconnected")
}
