// Package live pushes order lifecycle events to connected status boards over
// WebSocket, replacing poll-based refresh on the client side.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"

	"fertidesk/internal/models"
)

// Event is one order lifecycle notification.
type Event struct {
	Type  string        `json:"type"` // "order_created" or "order_updated"
	Order *models.Order `json:"order"`
}

// Hub fans order events out to every connected client. Slow clients are
// dropped rather than allowed to stall the broadcast.
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub returns an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:     log,
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("marshal live event", "err", err)
		return
	}

	h.mu.RLock()
	stalled := make([]*Client, 0)
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.log.Warn("live client stalled, dropping connection")
		h.unregister(c)
	}
}

// OrderCreated broadcasts a creation event.
func (h *Hub) OrderCreated(order *models.Order) {
	h.Broadcast(Event{Type: "order_created", Order: order})
}

// OrderUpdated broadcasts a status-change event.
func (h *Hub) OrderUpdated(order *models.Order) {
	h.Broadcast(Event{Type: "order_updated", Order: order})
}
