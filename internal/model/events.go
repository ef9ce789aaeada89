package model

// EventType identifies a channel event on the wire
type EventType string

const (
	// Client to server
	EventJoinScreenQueue EventType = "join-screen-queue"
	EventLeaveQueue      EventType = "leave-queue"
	EventConfirmReady    EventType = "confirm-ready"
	EventDisplayConnect  EventType = "display-connect"
	EventPlayerReady     EventType = "player-ready"
	EventPaddlePosition  EventType = "paddle-position"
	EventPaddleMove      EventType = "paddle-move"

	// Server to client: connection and queue
	EventWelcome             EventType = "welcome"
	EventError               EventType = "error"
	EventQueueUpdate         EventType = "queue-update"
	EventQueueRejected       EventType = "queue-rejected"
	EventQueueReset          EventType = "queue-reset"
	EventScreenStatuses      EventType = "screen-statuses"
	EventDisplayDisconnected EventType = "display-disconnected"

	// Server to client: handshake
	EventMatchFound     EventType = "match-found"
	EventBothReady      EventType = "both-ready"
	EventMatchCancelled EventType = "match-cancelled"

	// Server to client: game
	EventGameConfig           EventType = "game-config"
	EventCountdownStart       EventType = "countdown-start"
	EventCountdown            EventType = "countdown"
	EventGameStart            EventType = "game-start"
	EventUpdateGame           EventType = "update-game"
	EventScored               EventType = "scored"
	EventServe                EventType = "serve"
	EventGameEnd              EventType = "game-end"
	EventGameOver             EventType = "game-over"
	EventWaitingForChallenger EventType = "waiting-for-challenger"
	EventEnableBlinking       EventType = "enable-blinking"
	EventDisableBlinking      EventType = "disable-blinking"
)

// Message is an outbound event with its payload
type Message struct {
	Type    EventType
	Payload any
}

// NewMessage creates a Message
func NewMessage(t EventType, payload any) Message {
	return Message{Type: t, Payload: payload}
}

// Inbound payloads

// JoinScreenQueuePayload is sent by a lobby client to enter a queue
type JoinScreenQueuePayload struct {
	ScreenID ScreenID `json:"screenId"`
}

// PlayerReadyPayload binds a screen channel to a lobby identity
type PlayerReadyPayload struct {
	LobbyID LobbyID `json:"lobbyId"`
	Slot    Slot    `json:"slot"`
}

// PaddlePositionPayload carries an absolute paddle position in [0,1]
type PaddlePositionPayload struct {
	Position float64 `json:"position"`
}

// PaddleDirection is a legacy keyboard control direction
type PaddleDirection string

const (
	PaddleUp   PaddleDirection = "up"
	PaddleDown PaddleDirection = "down"
	PaddleStop PaddleDirection = "stop"
)

// PaddleMovePayload carries a legacy keyboard control
type PaddleMovePayload struct {
	Direction PaddleDirection `json:"direction"`
}

// Outbound payloads

// WelcomePayload tells a client the identity assigned to its connection
type WelcomePayload struct {
	LobbyID   LobbyID   `json:"lobbyId,omitempty"`
	ChannelID ChannelID `json:"screenChannelId,omitempty"`
	ScreenID  ScreenID  `json:"screenId,omitempty"`
}

// ErrorPayload reports a rejected frame
type ErrorPayload struct {
	Message string `json:"message"`
}

// QueueUpdatePayload reports a queued player's position
type QueueUpdatePayload struct {
	Position    int      `json:"position"`
	QueueLength int      `json:"queueLength"`
	ScreenID    ScreenID `json:"screenId"`
}

// QueueRejectedPayload reports why a join was refused
type QueueRejectedPayload struct {
	ScreenID ScreenID `json:"screenId"`
	Reason   string   `json:"reason"`
}

// NoticePayload carries a human readable notice
type NoticePayload struct {
	ScreenID ScreenID `json:"screenId,omitempty"`
	Message  string   `json:"message"`
}

// ScreenStatusesPayload lists every screen
type ScreenStatusesPayload struct {
	Screens []ScreenStatus `json:"screens"`
}

// MatchFoundPayload proposes a pairing
type MatchFoundPayload struct {
	MatchID    MatchID  `json:"matchId"`
	ScreenID   ScreenID `json:"screenId"`
	OpponentID LobbyID  `json:"opponentId"`
	Slot       Slot     `json:"slot"`
}

// BothReadyPayload tells a participant the handshake completed
type BothReadyPayload struct {
	ScreenID ScreenID `json:"screenId"`
	Slot     Slot     `json:"slot"`
}

// MatchCancelledPayload explains a failed handshake
type MatchCancelledPayload struct {
	Reason string `json:"reason"`
}

// CountdownPayload carries the remaining countdown steps
type CountdownPayload struct {
	Count int `json:"count"`
}

// ScoredPayload reports a point
type ScoredPayload struct {
	Scorer Slot       `json:"scorer"`
	Scores FinalScore `json:"scores"`
}

// ServePayload reports the ball being served
type ServePayload struct {
	ServingPlayer Slot `json:"servingPlayer"`
}

// GameEndPayload is the per-player termination notice
type GameEndPayload struct {
	Won        bool       `json:"won"`
	FinalScore FinalScore `json:"finalScore"`
	Forfeit    bool       `json:"forfeit,omitempty"`
}

// GameOverPayload is the screen-wide termination notice
type GameOverPayload struct {
	Winner     Slot       `json:"winner"`
	FinalScore FinalScore `json:"finalScore"`
}

// BlinkingPayload names the slot whose player dropped or came back
type BlinkingPayload struct {
	Slot Slot `json:"slot"`
}

// GameConfigPayload is the client-facing view of the game configuration
type GameConfigPayload struct {
	ScreenID           ScreenID `json:"screenId"`
	CanvasWidth        float64  `json:"canvasWidth"`
	CanvasHeight       float64  `json:"canvasHeight"`
	PaddleWidth        float64  `json:"paddleWidth"`
	PaddleHeight       float64  `json:"paddleHeight"`
	PaddleSpeed        float64  `json:"paddleSpeed"`
	PaddleOffset       float64  `json:"paddleOffset"`
	BallRadius         float64  `json:"ballRadius"`
	BallInitialSpeed   float64  `json:"ballInitialSpeed"`
	BallSpeedIncrement float64  `json:"ballSpeedIncrement"`
	BallMaxSpeed       float64  `json:"ballMaxSpeed"`
	BallMinAngle       float64  `json:"ballMinAngle"`
	WinScore           int      `json:"winScore"`
	ServeDelayMS       int64    `json:"serveDelayMs"`
	TickRate           int      `json:"tickRate"`
}

// NewGameConfigPayload builds the client-facing configuration for a screen
func NewGameConfigPayload(cfg GameConfig, screen ScreenID) GameConfigPayload {
	return GameConfigPayload{
		ScreenID:           screen,
		CanvasWidth:        cfg.CanvasWidth,
		CanvasHeight:       cfg.CanvasHeight,
		PaddleWidth:        cfg.PaddleWidth,
		PaddleHeight:       cfg.PaddleHeight,
		PaddleSpeed:        cfg.PaddleSpeed,
		PaddleOffset:       cfg.PaddleOffset,
		BallRadius:         cfg.BallRadius,
		BallInitialSpeed:   cfg.BallInitialSpeed,
		BallSpeedIncrement: cfg.BallSpeedIncrement,
		BallMaxSpeed:       cfg.BallMaxSpeed,
		BallMinAngle:       cfg.BallMinAngle,
		WinScore:           cfg.WinScore,
		ServeDelayMS:       cfg.ServeDelay.Milliseconds(),
		TickRate:           cfg.TickRate,
	}
}
