package ws

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/services/match"
	"github.com/mcoot/screenpong/internal/transport/protocol"
)

// Coordinator is the part of the match coordinator the channels drive
type Coordinator interface {
	Handle(ev match.Event)
	HasScreen(id model.ScreenID) bool
}

// Handler upgrades HTTP requests into lobby and screen channels
type Handler struct {
	hub         *Hub
	coordinator Coordinator
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewHandler creates a Handler. allowedOrigins empty accepts any origin.
func NewHandler(hub *Hub, coordinator Coordinator, allowedOrigins []string, logger *slog.Logger) *Handler {
	return &Handler{
		hub:         hub,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func codecFor(r *http.Request) protocol.Codec {
	return protocol.ByName(r.URL.Query().Get("codec"))
}

// ServeLobby handles GET /ws/lobby. Every connection gets a fresh lobby
// identity.
func (h *Handler) ServeLobby(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := model.LobbyID(uuid.NewString())
	c := newLobbyConn(ws, id, codecFor(r))
	h.hub.Register(c)
	go c.writePump()

	h.hub.SendToLobby(id, model.NewMessage(model.EventWelcome, model.WelcomePayload{LobbyID: id}))
	h.coordinator.Handle(match.LobbyConnected{Lobby: id})

	c.readPump(h.logger,
		func(f protocol.Frame) { h.lobbyFrame(c, f) },
		func(err error) { h.rejectFrame(c, err) },
	)

	h.hub.Unregister(c)
	h.coordinator.Handle(match.LobbyDisconnected{Lobby: id})
}

func (h *Handler) lobbyFrame(c *Conn, f protocol.Frame) {
	switch f.Type {
	case model.EventJoinScreenQueue:
		p, err := protocol.DecodePayload[model.JoinScreenQueuePayload](f)
		if err != nil {
			h.rejectFrame(c, err)
			return
		}
		h.coordinator.Handle(match.JoinQueue{Lobby: c.lobby, Screen: p.ScreenID})
	case model.EventLeaveQueue:
		h.coordinator.Handle(match.LeaveQueue{Lobby: c.lobby})
	case model.EventConfirmReady:
		h.coordinator.Handle(match.ConfirmReady{Lobby: c.lobby})
	default:
		h.rejectFrame(c, errUnknownEvent(f.Type))
	}
}

// ServeScreen handles GET /ws/screens/{id}. The display and both players'
// controllers connect here.
func (h *Handler) ServeScreen(w http.ResponseWriter, r *http.Request) {
	screen := model.ScreenID(mux.Vars(r)["id"])
	if !h.coordinator.HasScreen(screen) {
		http.Error(w, model.ErrScreenNotFound.Error(), http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("screen_id", string(screen)),
			slog.String("error", err.Error()))
		return
	}

	id := model.ChannelID(uuid.NewString())
	c := newScreenConn(ws, id, screen, codecFor(r))
	h.hub.Register(c)
	go c.writePump()

	h.hub.SendToChannel(id, model.NewMessage(model.EventWelcome, model.WelcomePayload{
		ChannelID: id,
		ScreenID:  screen,
	}))

	c.readPump(h.logger,
		func(f protocol.Frame) { h.screenFrame(c, f) },
		func(err error) { h.rejectFrame(c, err) },
	)

	h.hub.Unregister(c)
	h.coordinator.Handle(match.ScreenChannelDisconnected{Screen: screen, Channel: id})
}

func (h *Handler) screenFrame(c *Conn, f protocol.Frame) {
	switch f.Type {
	case model.EventDisplayConnect:
		h.coordinator.Handle(match.DisplayConnect{Screen: c.screen, Channel: c.channel})
	case model.EventPlayerReady:
		p, err := protocol.DecodePayload[model.PlayerReadyPayload](f)
		if err != nil {
			h.rejectFrame(c, err)
			return
		}
		if p.LobbyID == "" {
			h.rejectFrame(c, model.ErrInvalidPayload)
			return
		}
		if p.Slot != model.SlotNone && !p.Slot.Valid() {
			h.rejectFrame(c, model.ErrInvalidSlot)
			return
		}
		h.coordinator.Handle(match.PlayerReady{
			Screen:  c.screen,
			Channel: c.channel,
			Lobby:   p.LobbyID,
			Slot:    p.Slot,
		})
	case model.EventPaddlePosition:
		p, err := protocol.DecodePayload[model.PaddlePositionPayload](f)
		if err != nil {
			h.rejectFrame(c, err)
			return
		}
		h.coordinator.Handle(match.PaddlePosition{Screen: c.screen, Channel: c.channel, Position: p.Position})
	case model.EventPaddleMove:
		p, err := protocol.DecodePayload[model.PaddleMovePayload](f)
		if err != nil {
			h.rejectFrame(c, err)
			return
		}
		h.coordinator.Handle(match.PaddleMove{Screen: c.screen, Channel: c.channel, Direction: p.Direction})
	case model.EventConfirmReady:
		h.coordinator.Handle(match.ConfirmReady{Channel: c.channel})
	default:
		h.rejectFrame(c, errUnknownEvent(f.Type))
	}
}

func errUnknownEvent(t model.EventType) error {
	return fmt.Errorf("%w: unknown event %s", model.ErrInvalidPayload, t)
}

// rejectFrame answers a malformed frame with an error envelope
func (h *Handler) rejectFrame(c *Conn, err error) {
	h.logger.Debug("frame rejected", append(c.attrs(), slog.String("error", err.Error()))...)
	h.hub.reply(c, model.NewMessage(model.EventError, model.ErrorPayload{Message: err.Error()}))
}
