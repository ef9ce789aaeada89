package model

// LobbyID identifies a player's lobby-channel connection. It is the stable
// identity used for queueing, pairing and match slots.
type LobbyID string

// ChannelID identifies a per-screen channel connection, held either by a
// screen display or by a player bound to that screen.
type ChannelID string

// ScreenID identifies a physical screen
type ScreenID string

// MatchID identifies a proposed or live pairing
type MatchID string

// Slot is the side a player occupies within a match
type Slot int

const (
	SlotNone Slot = 0
	Slot1    Slot = 1
	Slot2    Slot = 2
)

// Valid reports whether the slot is 1 or 2
func (s Slot) Valid() bool {
	return s == Slot1 || s == Slot2
}

// Other returns the opposing slot
func (s Slot) Other() Slot {
	switch s {
	case Slot1:
		return Slot2
	case Slot2:
		return Slot1
	default:
		return SlotNone
	}
}
