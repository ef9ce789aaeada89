package match

import (
	"strconv"
	"sync"

	"github.com/mcoot/screenpong/internal/model"
)

// recordingEmitter captures every outbound message by recipient
type recordingEmitter struct {
	mu       sync.Mutex
	lobbies  map[model.LobbyID][]model.Message
	channels map[model.ChannelID][]model.Message
	screens  map[model.ScreenID][]model.Message
	all      []model.Message
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{
		lobbies:  make(map[model.LobbyID][]model.Message),
		channels: make(map[model.ChannelID][]model.Message),
		screens:  make(map[model.ScreenID][]model.Message),
	}
}

func (e *recordingEmitter) SendToLobby(id model.LobbyID, msg model.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lobbies[id] = append(e.lobbies[id], msg)
}

func (e *recordingEmitter) SendToChannel(id model.ChannelID, msg model.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.channels[id] = append(e.channels[id], msg)
}

func (e *recordingEmitter) BroadcastScreen(id model.ScreenID, msg model.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.screens[id] = append(e.screens[id], msg)
}

func (e *recordingEmitter) BroadcastLobby(msg model.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, msg)
}

func (e *recordingEmitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lobbies = make(map[model.LobbyID][]model.Message)
	e.channels = make(map[model.ChannelID][]model.Message)
	e.screens = make(map[model.ScreenID][]model.Message)
	e.all = nil
}

func (e *recordingEmitter) toLobby(id model.LobbyID) []model.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Message(nil), e.lobbies[id]...)
}

func (e *recordingEmitter) toChannel(id model.ChannelID) []model.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Message(nil), e.channels[id]...)
}

func (e *recordingEmitter) toScreen(id model.ScreenID) []model.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Message(nil), e.screens[id]...)
}

// types lists the event types of messages, skipping per-tick game updates
func types(msgs []model.Message) []model.EventType {
	var out []model.EventType
	for _, m := range msgs {
		if m.Type == model.EventUpdateGame {
			continue
		}
		out = append(out, m.Type)
	}
	return out
}

// find returns the payloads of every message of a type
func find[T any](msgs []model.Message, t model.EventType) []T {
	var out []T
	for _, m := range msgs {
		if m.Type != t {
			continue
		}
		if p, ok := m.Payload.(T); ok {
			out = append(out, p)
		}
	}
	return out
}

func count(msgs []model.Message, t model.EventType) int {
	n := 0
	for _, m := range msgs {
		if m.Type == t {
			n++
		}
	}
	return n
}

// sequentialIDs returns an IDFunc yielding match-1, match-2, ...
func sequentialIDs() IDFunc {
	var mu sync.Mutex
	n := 0
	return func() model.MatchID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return model.MatchID("match-" + strconv.Itoa(n))
	}
}
