// Package ws carries lobby and screen channels over websockets and delivers
// the coordinator's outbound messages to them.
package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/screenpong/internal/model"
)

// ScreenMirror receives a copy of every screen broadcast, e.g. a spectator
// feed. Publish must not block.
type ScreenMirror interface {
	Publish(screen model.ScreenID, msg model.Message)
}

type target int

const (
	toLobby target = iota
	toChannel
	toScreen
	toAllLobbies
	toConn
)

type delivery struct {
	target  target
	lobby   model.LobbyID
	channel model.ChannelID
	screen  model.ScreenID
	conn    *Conn
	msg     model.Message
}

// Hub tracks every open connection and fans messages out to them. All
// routing state is owned by the Run loop.
type Hub struct {
	lobbies  map[model.LobbyID]*Conn
	channels map[model.ChannelID]*Conn
	screens  map[model.ScreenID]map[*Conn]bool
	mirrors  []ScreenMirror
	logger   *slog.Logger

	register   chan *Conn
	unregister chan *Conn
	deliver    chan delivery
	count      chan chan int
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(logger *slog.Logger, mirrors ...ScreenMirror) *Hub {
	return &Hub{
		lobbies:    make(map[model.LobbyID]*Conn),
		channels:   make(map[model.ChannelID]*Conn),
		screens:    make(map[model.ScreenID]map[*Conn]bool),
		mirrors:    mirrors,
		logger:     logger.With(slog.String("component", "ws")),
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		deliver:    make(chan delivery, 1024),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	defer close(h.stopped)
	h.logger.Info("websocket hub started")
	for {
		select {
		case c := <-h.register:
			h.add(c)

		case c := <-h.unregister:
			h.remove(c)

		case d := <-h.deliver:
			h.route(d)

		case reply := <-h.count:
			reply <- len(h.lobbies) + len(h.channels)

		case <-h.done:
			n := 0
			for _, c := range h.lobbies {
				close(c.send)
				n++
			}
			for _, c := range h.channels {
				close(c.send)
				n++
			}
			clear(h.lobbies)
			clear(h.channels)
			clear(h.screens)
			h.logger.Info("websocket hub stopped", slog.Int("disconnected_clients", n))
			return
		}
	}
}

func (h *Hub) add(c *Conn) {
	switch c.kind {
	case KindLobby:
		h.lobbies[c.lobby] = c
	case KindScreen:
		h.channels[c.channel] = c
		members, ok := h.screens[c.screen]
		if !ok {
			members = make(map[*Conn]bool)
			h.screens[c.screen] = members
		}
		members[c] = true
	}
	h.logger.Info("websocket client registered",
		append(c.attrs(), slog.Int("total_clients", len(h.lobbies)+len(h.channels)))...)
}

func (h *Hub) remove(c *Conn) {
	switch c.kind {
	case KindLobby:
		if h.lobbies[c.lobby] != c {
			return
		}
		delete(h.lobbies, c.lobby)
	case KindScreen:
		if h.channels[c.channel] != c {
			return
		}
		delete(h.channels, c.channel)
		delete(h.screens[c.screen], c)
	}
	close(c.send)
	h.logger.Info("websocket client unregistered",
		append(c.attrs(),
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int("total_clients", len(h.lobbies)+len(h.channels)),
		)...)
}

func (h *Hub) route(d delivery) {
	encoded := make(map[string]frame, 2)
	send := func(c *Conn) {
		if c == nil {
			return
		}
		f, ok := encoded[c.codec.Name()]
		if !ok {
			data, err := c.codec.Encode(d.msg)
			if err != nil {
				h.logger.Error("failed to encode message",
					slog.String("type", string(d.msg.Type)),
					slog.String("codec", c.codec.Name()),
					slog.String("error", err.Error()))
				return
			}
			f = frame{binary: c.codec.Binary(), data: data}
			encoded[c.codec.Name()] = f
		}
		if err := c.enqueue(f); err != nil {
			h.logger.Warn("websocket message dropped - client buffer full",
				append(c.attrs(), slog.String("type", string(d.msg.Type)))...)
		}
	}

	switch d.target {
	case toLobby:
		send(h.lobbies[d.lobby])
	case toChannel:
		send(h.channels[d.channel])
	case toConn:
		if h.lobbies[d.conn.lobby] == d.conn || h.channels[d.conn.channel] == d.conn {
			send(d.conn)
		}
	case toScreen:
		for c := range h.screens[d.screen] {
			send(c)
		}
	case toAllLobbies:
		for _, c := range h.lobbies {
			send(c)
		}
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(c *Conn) {
	select {
	case h.register <- c:
	case <-h.stopped:
		close(c.send)
	}
}

// Unregister removes a connection and closes its send buffer
func (h *Hub) Unregister(c *Conn) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

func (h *Hub) push(d delivery) {
	select {
	case h.deliver <- d:
	default:
		h.logger.Warn("websocket message dropped - hub buffer full",
			slog.String("type", string(d.msg.Type)))
	}
}

// SendToLobby delivers to a lobby channel
func (h *Hub) SendToLobby(id model.LobbyID, msg model.Message) {
	h.push(delivery{target: toLobby, lobby: id, msg: msg})
}

// SendToChannel delivers to a single screen channel
func (h *Hub) SendToChannel(id model.ChannelID, msg model.Message) {
	h.push(delivery{target: toChannel, channel: id, msg: msg})
}

// BroadcastScreen delivers to every channel open on a screen, and to the
// mirrors
func (h *Hub) BroadcastScreen(id model.ScreenID, msg model.Message) {
	h.push(delivery{target: toScreen, screen: id, msg: msg})
	for _, m := range h.mirrors {
		m.Publish(id, msg)
	}
}

// BroadcastLobby delivers to every lobby channel
func (h *Hub) BroadcastLobby(msg model.Message) {
	h.push(delivery{target: toAllLobbies, msg: msg})
}

// reply delivers to one connection regardless of its identity
func (h *Hub) reply(c *Conn, msg model.Message) {
	h.push(delivery{target: toConn, conn: c, msg: msg})
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.stopped:
		return 0
	}
}

// Close shuts down the hub and every connection it holds
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}
