package ws

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/transport/protocol"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Send pings at this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Largest inbound frame accepted
	maxMessageSize = 4096

	// Buffer size for outgoing frames; a full second of ticks plus slack
	sendBufferSize = 256
)

// Kind distinguishes the two channels a player may hold
type Kind string

const (
	KindLobby  Kind = "lobby"
	KindScreen Kind = "screen"
)

type frame struct {
	binary bool
	data   []byte
}

// Conn is one websocket connection, either a lobby channel or a screen
// channel
type Conn struct {
	kind        Kind
	lobby       model.LobbyID
	channel     model.ChannelID
	screen      model.ScreenID
	codec       protocol.Codec
	ws          *websocket.Conn
	send        chan frame
	connectedAt time.Time
}

func newLobbyConn(ws *websocket.Conn, id model.LobbyID, codec protocol.Codec) *Conn {
	return &Conn{
		kind:        KindLobby,
		lobby:       id,
		codec:       codec,
		ws:          ws,
		send:        make(chan frame, sendBufferSize),
		connectedAt: time.Now(),
	}
}

func newScreenConn(ws *websocket.Conn, id model.ChannelID, screen model.ScreenID, codec protocol.Codec) *Conn {
	return &Conn{
		kind:        KindScreen,
		channel:     id,
		screen:      screen,
		codec:       codec,
		ws:          ws,
		send:        make(chan frame, sendBufferSize),
		connectedAt: time.Now(),
	}
}

func (c *Conn) attrs() []any {
	if c.kind == KindLobby {
		return []any{slog.String("kind", string(c.kind)), slog.String("lobby_id", string(c.lobby))}
	}
	return []any{
		slog.String("kind", string(c.kind)),
		slog.String("channel_id", string(c.channel)),
		slog.String("screen_id", string(c.screen)),
	}
}

// readPump decodes inbound frames until the peer goes away. Malformed
// frames are reported through onError and the connection stays open.
func (c *Conn) readPump(logger *slog.Logger, onFrame func(protocol.Frame), onError func(error)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", append(c.attrs(), slog.String("error", err.Error()))...)
			}
			return
		}
		f, err := c.codec.Decode(data)
		if err != nil {
			onError(err)
			continue
		}
		onFrame(f)
	}
}

// writePump drains the send buffer and keeps the connection alive with
// pings. It returns once the hub closes the buffer or a write fails.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			messageType := websocket.TextMessage
			if f.binary {
				messageType = websocket.BinaryMessage
			}
			if err := c.ws.WriteMessage(messageType, f.data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var errBufferFull = errors.New("send buffer full")

// enqueue hands a frame to the write pump without blocking
func (c *Conn) enqueue(f frame) error {
	select {
	case c.send <- f:
		return nil
	default:
		return errBufferFull
	}
}
