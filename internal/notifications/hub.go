package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"foodcrimes/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const maxFeedConns = 64

// ErrFeedFull is returned by Register when the connection limit is reached.
var ErrFeedFull = errors.New("admin feed connection limit reached")

// Hub tracks admin feed connections and broadcasts events to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds a connection for username.
func (h *Hub) Register(username string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errors.New("admin feed is shutting down")
	}
	if len(h.clients) >= maxFeedConns {
		return nil, ErrFeedFull
	}
	c := newClient(h, conn, username)
	h.clients[c] = struct{}{}
	observability.WebSocketConnectionsTotal.Inc()
	return c, nil
}

// UnregisterClient removes c and closes its send buffer. Safe to call twice.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	observability.WebSocketConnectionsTotal.Dec()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.clients {
		c.TrySend(data)
	}
}

// StartWiring forwards every event the Notifier receives to the hub.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.Subscribe(ctx, h.BroadcastAll)
}

// Shutdown closes every connection with a going-away frame.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		if c.Conn != nil {
			if err := c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				slog.Warn("failed to write close message", "user", c.Username, "error", err)
			}
			_ = c.Conn.Close()
		}
		close(c.Send)
		delete(h.clients, c)
		observability.WebSocketConnectionsTotal.Dec()
	}
	return nil
}
