package match

import (
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/scheduler"
)

// Event is an input to the Machine
type Event interface {
	event()
}

// LobbyConnected announces a new lobby connection
type LobbyConnected struct {
	Lobby model.LobbyID
}

// LobbyDisconnected announces a closed lobby connection
type LobbyDisconnected struct {
	Lobby model.LobbyID
}

// JoinQueue asks to wait on a screen's queue
type JoinQueue struct {
	Lobby  model.LobbyID
	Screen model.ScreenID
}

// LeaveQueue withdraws from whichever queue the player waits on
type LeaveQueue struct {
	Lobby model.LobbyID
}

// ConfirmReady acknowledges a proposed pairing. It may arrive from the
// lobby connection or from a bound screen channel; exactly one of Lobby and
// Channel is set.
type ConfirmReady struct {
	Lobby   model.LobbyID
	Channel model.ChannelID
}

// DisplayConnect announces a screen's display
type DisplayConnect struct {
	Screen  model.ScreenID
	Channel model.ChannelID
}

// PlayerReady binds a screen channel to a participant
type PlayerReady struct {
	Screen  model.ScreenID
	Channel model.ChannelID
	Lobby   model.LobbyID
	Slot    model.Slot
}

// PaddlePosition sets a paddle from a normalised position
type PaddlePosition struct {
	Screen   model.ScreenID
	Channel  model.ChannelID
	Position float64
}

// PaddleMove applies a keyboard direction to a paddle
type PaddleMove struct {
	Screen    model.ScreenID
	Channel   model.ChannelID
	Direction model.PaddleDirection
}

// ScreenChannelDisconnected announces a closed screen channel, held either
// by the display or by a player
type ScreenChannelDisconnected struct {
	Screen  model.ScreenID
	Channel model.ChannelID
}

// TimerFired reports a claimed timer expiry
type TimerFired struct {
	Screen model.ScreenID
	Kind   scheduler.Kind
}

// Reset clears a screen back to idle
type Reset struct {
	Screen model.ScreenID
}

func (LobbyConnected) event()            {}
func (LobbyDisconnected) event()         {}
func (JoinQueue) event()                 {}
func (LeaveQueue) event()                {}
func (ConfirmReady) event()              {}
func (DisplayConnect) event()            {}
func (PlayerReady) event()               {}
func (PaddlePosition) event()            {}
func (PaddleMove) event()                {}
func (ScreenChannelDisconnected) event() {}
func (TimerFired) event()                {}
func (Reset) event()                     {}
