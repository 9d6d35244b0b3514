package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/choreledger/internal/model"
)

// Message is the wire form of one committed ledger event.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq"`
	ID      string          `json:"id"`
	Name    model.EventName `json:"name"`
	Caller  string          `json:"caller"`
	At      int64           `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// FromEvent wraps a ledger event for delivery.
func FromEvent(e model.Event) Message {
	return Message{
		Type:    "event",
		Seq:     e.Seq,
		ID:      e.ID,
		Name:    e.Name,
		Caller:  e.Caller,
		At:      e.At,
		Payload: e.Payload,
	}
}

type frame struct {
	seq  int64
	name model.EventName
	data []byte
}

// Hub maintains the set of active WebSocket clients and fans out committed
// events to them.
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

// Publish delivers a committed event to every subscribed client.
func (h *Hub) Publish(e model.Event) {
	h.Broadcast(FromEvent(e))
}

// Broadcast sends a message to all connected clients whose filter accepts it.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}
	f := frame{seq: msg.Seq, name: msg.Name, data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.wants(msg.Name) {
			continue
		}
		c.offered(f.seq)
		select {
		case c.send <- f:
		default:
			if c.lag() {
				h.logger.Debug("client buffer full, resyncing from log", "seq", msg.Seq)
			} else {
				h.logger.Warn("client buffer full, dropping event", "seq", msg.Seq, "name", msg.Name)
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
