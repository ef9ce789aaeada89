// Package sse streams a screen's events to spectators over server-sent
// events. Per-tick game updates are not forwarded.
package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/screenpong/internal/model"
)

// Hub manages spectator clients for a single screen
type Hub struct {
	screen  model.ScreenID
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a Hub for a screen. Call Run to start it.
func NewHub(screen model.ScreenID, logger *slog.Logger) *Hub {
	return &Hub{
		screen:     screen,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("screen_id", string(screen))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("sse hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("spectator connected",
				slog.String("spectator_id", client.id),
				slog.Int("total_clients", n))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; !ok {
				h.mu.Unlock()
				continue
			}
			delete(h.clients, client)
			close(client.send)
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("spectator disconnected",
				slog.String("spectator_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)),
				slog.Int("total_clients", n))

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("sse broadcast partial failure", slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			n := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", n))
			return
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastEvent sends an SSE event to every client without blocking
func (h *Hub) BroadcastEvent(eventName, data string) {
	select {
	case h.broadcast <- formatSSEMessage(eventName, data):
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full", slog.String("event", eventName))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE event. Every line of data gets its own
// "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and a trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
