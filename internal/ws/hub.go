package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"alert-service/internal/logging"
	"alert-service/internal/models"
)

// Update is pushed to connected dashboards after each persisted evaluation.
type Update struct {
	ID             string       `json:"id"`
	Asset          string       `json:"asset"`
	Level          models.Level `json:"level"`
	EvaluatedValue float64      `json:"evaluated_value"`
}

// Hub broadcasts evaluation updates to websocket clients.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	logger *logging.Logger
}

// NewHub constructs an empty Hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool), logger: logger}
}

// Add registers a client connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	h.logger.Infof("WebSocket client connected (total: %d)", len(h.conns))
}

// Remove drops a client connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		h.logger.Infof("WebSocket client disconnected (remaining: %d)", len(h.conns))
	}
}

// Broadcast sends an update to every connected client, dropping
// connections that fail to write.
func (h *Hub) Broadcast(update Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(update); err != nil {
			h.logger.Errorf("WebSocket write failed, dropping client: %v", err)
			_ = conn.Close()
			delete(h.conns, conn)
		}
	}
}
