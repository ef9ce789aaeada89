package model

import "time"

// ScreenState is the coordinator state of a single screen
type ScreenState string

const (
	ScreenStateIdle                ScreenState = "idle"
	ScreenStatePendingConfirmation ScreenState = "pending_confirmation"
	ScreenStateCountdown           ScreenState = "countdown"
	ScreenStateActive              ScreenState = "active"
	ScreenStateFinished            ScreenState = "finished"
)

// CanPair reports whether pairing attempts may start from this state
func (s ScreenState) CanPair() bool {
	return s == ScreenStateIdle || s == ScreenStateFinished
}

// Live reports whether a match is counting down or being played
func (s ScreenState) Live() bool {
	return s == ScreenStateCountdown || s == ScreenStateActive
}

// Match is the occupant record of a screen.
// Both slots set means a live game; one slot set with WinnerID means the
// winner is waiting for a challenger.
type Match struct {
	ID        MatchID   `json:"id"`
	ScreenID  ScreenID  `json:"screenId"`
	Player1   LobbyID   `json:"player1Id,omitempty"`
	Player2   LobbyID   `json:"player2Id,omitempty"`
	WinnerID  LobbyID   `json:"winnerId,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// Player returns the occupant of a slot
func (m *Match) Player(slot Slot) LobbyID {
	switch slot {
	case Slot1:
		return m.Player1
	case Slot2:
		return m.Player2
	default:
		return ""
	}
}

// SetPlayer assigns the occupant of a slot
func (m *Match) SetPlayer(slot Slot, id LobbyID) {
	switch slot {
	case Slot1:
		m.Player1 = id
	case Slot2:
		m.Player2 = id
	}
}

// SlotOf returns the slot occupied by a player, or SlotNone
func (m *Match) SlotOf(id LobbyID) Slot {
	switch {
	case id == "":
		return SlotNone
	case m.Player1 == id:
		return Slot1
	case m.Player2 == id:
		return Slot2
	default:
		return SlotNone
	}
}

// Full reports whether both slots are occupied
func (m *Match) Full() bool {
	return m.Player1 != "" && m.Player2 != ""
}

// WaitingForChallenger reports whether a winner holds the screen alone
func (m *Match) WaitingForChallenger() bool {
	return m.WinnerID != "" && !m.Full()
}

// PendingMatch is an unconfirmed pairing awaiting both acknowledgements
type PendingMatch struct {
	ID               MatchID
	ScreenID         ScreenID
	Player1          LobbyID
	Player2          LobbyID
	IsRematch        bool
	WinnerSlot       Slot // slot held by the waiting winner when IsRematch
	Player1Confirmed bool
	Player2Confirmed bool
	CreatedAt        time.Time
}

// Player returns the participant in a slot
func (p *PendingMatch) Player(slot Slot) LobbyID {
	switch slot {
	case Slot1:
		return p.Player1
	case Slot2:
		return p.Player2
	default:
		return ""
	}
}

// SlotOf returns the slot of a participant, or SlotNone
func (p *PendingMatch) SlotOf(id LobbyID) Slot {
	switch {
	case id == "":
		return SlotNone
	case p.Player1 == id:
		return Slot1
	case p.Player2 == id:
		return Slot2
	default:
		return SlotNone
	}
}

// Confirm records an acknowledgement for a slot. Repeated calls are no-ops.
func (p *PendingMatch) Confirm(slot Slot) {
	switch slot {
	case Slot1:
		p.Player1Confirmed = true
	case Slot2:
		p.Player2Confirmed = true
	}
}

// Confirmed reports whether a slot has acknowledged
func (p *PendingMatch) Confirmed(slot Slot) bool {
	switch slot {
	case Slot1:
		return p.Player1Confirmed
	case Slot2:
		return p.Player2Confirmed
	default:
		return false
	}
}

// BothConfirmed reports whether the handshake is complete
func (p *PendingMatch) BothConfirmed() bool {
	return p.Player1Confirmed && p.Player2Confirmed
}

// Screen is one physical display with at most one match
type Screen struct {
	ID               ScreenID
	Name             string
	DisplayConnected bool
	Display          ChannelID
	State            ScreenState
	Match            *Match
	Pending          *PendingMatch
	Game             *GameState
	Countdown        int
	Reconnecting     map[Slot]bool
	Replay           []ReplayFrame
}

// NewScreen creates an idle screen
func NewScreen(id ScreenID) *Screen {
	return &Screen{
		ID:           id,
		Name:         string(id),
		State:        ScreenStateIdle,
		Reconnecting: make(map[Slot]bool),
	}
}

// Frozen reports whether the simulation is held for a reconnecting player
func (s *Screen) Frozen() bool {
	for _, waiting := range s.Reconnecting {
		if waiting {
			return true
		}
	}
	return false
}

// ScreenStatus is the public summary of a screen
type ScreenStatus struct {
	ID                   ScreenID    `json:"id"`
	State                ScreenState `json:"state"`
	DisplayConnected     bool        `json:"displayConnected"`
	GameActive           bool        `json:"gameActive"`
	Player1ID            LobbyID     `json:"player1Id,omitempty"`
	Player2ID            LobbyID     `json:"player2Id,omitempty"`
	WaitingForChallenger bool        `json:"waitingForChallenger"`
	QueueLength          int         `json:"queueLength"`
	Score                *FinalScore `json:"score,omitempty"`
}
