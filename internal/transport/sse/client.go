package sse

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing events
	sendBufferSize = 64

	// Reconnect delay suggested to the browser, in milliseconds
	retryMillis = "3000"
)

// Client is one connected spectator
type Client struct {
	hub         *Hub
	id          string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a spectator client with a fresh id
func NewClient(hub *Hub) *Client {
	return &Client{
		hub:         hub,
		id:          uuid.NewString(),
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams a hub's events until the client goes away or the hub
// closes
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	client := NewClient(hub)
	hub.Register(client)
	defer hub.Unregister(client)

	_, _ = w.Write([]byte("retry: " + retryMillis + "\n\n"))
	_, _ = w.Write(formatSSEMessage("connected", `{"screenId":"`+string(hub.screen)+`"}`))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
