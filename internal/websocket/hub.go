// Package websocket pushes data-refresh notifications to connected
// dashboard clients so they re-render without polling.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Message type constants.
const (
	TypeConnection    = "connection"
	TypeDataRefreshed = "data:refreshed"
)

// Message is the envelope sent to clients.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	quit    chan struct{}
	running bool
}

// NewHub creates a hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine. Safe to call once.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop shuts the hub down and disconnects all clients.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			if data, err := json.Marshal(Message{
				Type:      TypeConnection,
				Data:      map[string]string{"status": "connected", "client_id": client.id},
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}); err == nil {
				select {
				case client.send <- data:
				default:
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client unregistered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", count))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client, drop the message rather than block.
					h.logger.Warn("client buffer full, dropping message",
						slog.String("client_id", client.id))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastDataRefreshed tells every client the underlying data changed.
func (h *Hub) BroadcastDataRefreshed(detail interface{}) {
	data, err := json.Marshal(Message{
		Type:      TypeDataRefreshed,
		Data:      detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Error("marshal refresh message", slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
