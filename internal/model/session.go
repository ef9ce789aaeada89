package model

import "time"

// Session correlates a player's lobby identity with their optional screen
// channel identity. LobbyConnected is false once the lobby channel has closed.
type Session struct {
	LobbyID        LobbyID   `json:"lobbyId"`
	ScreenChannel  ChannelID `json:"screenChannelId,omitempty"`
	ScreenID       ScreenID  `json:"screenId,omitempty"`
	ScreenName     string    `json:"screenName,omitempty"`
	Slot           Slot      `json:"slot,omitempty"`
	JoinedAt       time.Time `json:"joinedAt"`
	LobbyConnected bool      `json:"lobbyConnected"`
}

// Bound reports whether the session currently has a screen channel
func (s Session) Bound() bool {
	return s.ScreenChannel != ""
}
