// Package websocket is the chat transport. Each connection is one chat
// session: inbound frames carry the sender and their message text, and
// replies are written back on the same connection. The hub tracks live
// connections so the server can broadcast notices to everyone.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Inbound is one chat message from a connected client.
type Inbound struct {
	UserID    int64  `json:"user_id"`
	ChatID    int64  `json:"chat_id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Text      string `json:"text"`
}

// Outbound is one reply frame sent to a client.
type Outbound struct {
	Text string `json:"text"`
}

// Handler produces the replies for one inbound chat message.
type Handler func(in Inbound) []string

// Hub maintains the set of active chat connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a notice to every connected client.
func (h *Hub) Broadcast(text string) {
	data, err := json.Marshal(Outbound{Text: text})
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop to avoid blocking the hub
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
