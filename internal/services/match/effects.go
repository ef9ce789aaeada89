package match

import (
	"time"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/scheduler"
)

// Effect is an instruction produced by the Machine for the Coordinator to
// carry out
type Effect interface {
	effect()
}

// Recipient addresses a single connection. Exactly one field is set.
type Recipient struct {
	Lobby   model.LobbyID
	Channel model.ChannelID
}

// Send delivers a message to one connection
type Send struct {
	To      Recipient
	Message model.Message
}

// BroadcastScreen delivers a message to every channel on a screen
type BroadcastScreen struct {
	Screen  model.ScreenID
	Message model.Message
}

// BroadcastLobby delivers a message to every lobby connection
type BroadcastLobby struct {
	Message model.Message
}

// Schedule starts or replaces a screen timer
type Schedule struct {
	Screen model.ScreenID
	Kind   scheduler.Kind
	Delay  time.Duration
}

// Cancel stops a screen timer
type Cancel struct {
	Screen model.ScreenID
	Kind   scheduler.Kind
}

// RecordScore hands a finished match to the score sink
type RecordScore struct {
	Entry model.ScoreEntry
}

func (Send) effect()            {}
func (BroadcastScreen) effect() {}
func (BroadcastLobby) effect()  {}
func (Schedule) effect()        {}
func (Cancel) effect()          {}
func (RecordScore) effect()     {}
