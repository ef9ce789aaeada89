package model

import "time"

// ScoreEntry is the persisted result of one finished match
type ScoreEntry struct {
	Screen     ScreenID   `json:"screen"`
	Winner     LobbyID    `json:"winner"`
	Points     int        `json:"points"`
	FinalScore FinalScore `json:"finalScore"`
	Forfeit    bool       `json:"forfeit,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// LeaderboardEntry is a winner ranked by number of wins
type LeaderboardEntry struct {
	PlayerID LobbyID `json:"playerId"`
	Wins     int64   `json:"wins"`
	Rank     int64   `json:"rank"`
}
