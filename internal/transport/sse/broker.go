package sse

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mcoot/screenpong/internal/model"
)

// Broker owns one Hub per screen and republishes screen broadcasts to
// spectators
type Broker struct {
	hubs   map[model.ScreenID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewBroker creates a Broker with a running hub for every screen
func NewBroker(screens []model.ScreenID, logger *slog.Logger) *Broker {
	b := &Broker{
		hubs:   make(map[model.ScreenID]*Hub, len(screens)),
		logger: logger.With(slog.String("component", "sse")),
	}
	for _, id := range screens {
		if _, ok := b.hubs[id]; ok {
			continue
		}
		hub := NewHub(id, b.logger)
		b.hubs[id] = hub
		go hub.Run()
	}
	return b
}

// Hub returns the hub for a screen, or nil if the screen is unknown
func (b *Broker) Hub(screen model.ScreenID) *Hub {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hubs[screen]
}

// Publish forwards a screen broadcast to its spectators. update-game frames
// are skipped; spectators poll the snapshot endpoint instead.
func (b *Broker) Publish(screen model.ScreenID, msg model.Message) {
	if msg.Type == model.EventUpdateGame {
		return
	}
	hub := b.Hub(screen)
	if hub == nil {
		return
	}
	data := "{}"
	if msg.Payload != nil {
		encoded, err := json.Marshal(msg.Payload)
		if err != nil {
			b.logger.Error("sse failed to encode event",
				slog.String("screen_id", string(screen)),
				slog.String("type", string(msg.Type)),
				slog.String("error", err.Error()))
			return
		}
		data = string(encoded)
	}
	hub.BroadcastEvent(string(msg.Type), data)
}

// Close stops every hub
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, hub := range b.hubs {
		hub.Close()
		delete(b.hubs, id)
	}
	b.logger.Info("sse broker stopped")
}
