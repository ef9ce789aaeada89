package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case ScreenList:
		o.printScreenList(v)
	case Screen:
		o.printScreen(v)
	case ScoreList:
		o.printScoreList(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case PlayerWins:
		o.printf("%s: %d wins\n", v.PlayerID, v.Wins)
	case ResetResult:
		o.printf("Screen %s reset\n", v.ScreenID)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Clients int    `json:"clients"`
}

// Score line of a live or finished match
type Score struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// ScreenStatus response type
type ScreenStatus struct {
	ID                   string `json:"id"`
	State                string `json:"state"`
	DisplayConnected     bool   `json:"displayConnected"`
	GameActive           bool   `json:"gameActive"`
	Player1ID            string `json:"player1Id,omitempty"`
	Player2ID            string `json:"player2Id,omitempty"`
	WaitingForChallenger bool   `json:"waitingForChallenger"`
	QueueLength          int    `json:"queueLength"`
	Score                *Score `json:"score,omitempty"`
}

// ScreenList response type
type ScreenList struct {
	Screens []ScreenStatus `json:"screens"`
}

// Ball response type
type Ball struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"velocityX"`
	VY float64 `json:"velocityY"`
}

// Game response type
type Game struct {
	Ball   Ball `json:"ball"`
	Active bool `json:"active"`
}

// Screen response type
type Screen struct {
	ScreenStatus
	Game *Game `json:"game,omitempty"`
}

// ScoreEntry response type
type ScoreEntry struct {
	Screen     string    `json:"screen"`
	Winner     string    `json:"winner"`
	Points     int       `json:"points"`
	Player1    int       `json:"player1"`
	Player2    int       `json:"player2"`
	Forfeit    bool      `json:"forfeit,omitempty"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ScoreList response type
type ScoreList struct {
	Scores []ScoreEntry `json:"scores"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Wins     int64  `json:"wins"`
	Rank     int64  `json:"rank"`
}

// Leaderboard response type
type Leaderboard struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// PlayerWins response type
type PlayerWins struct {
	PlayerID string `json:"playerId"`
	Wins     int64  `json:"wins"`
}

// ResetResult response type
type ResetResult struct {
	ScreenID string `json:"screenId"`
	Reset    bool   `json:"reset"`
}

func (o *Output) printHealthResult(h HealthResult) {
	o.printf("Status: %s\n", h.Status)
	o.printf("Storage: %s\n", h.Storage)
	o.printf("Clients: %d\n", h.Clients)
}

func (o *Output) printScreenStatus(s ScreenStatus) {
	display := "offline"
	if s.DisplayConnected {
		display = "online"
	}
	o.printf("%s [%s] display %s, %d queued\n", s.ID, s.State, display, s.QueueLength)
	if s.Player1ID != "" || s.Player2ID != "" {
		o.printf("  P1: %s  P2: %s\n", orDash(s.Player1ID), orDash(s.Player2ID))
	}
	if s.Score != nil {
		o.printf("  Score: %d-%d\n", s.Score.Player1, s.Score.Player2)
	}
	if s.WaitingForChallenger {
		o.printf("  Winner waiting for a challenger\n")
	}
}

func (o *Output) printScreenList(l ScreenList) {
	if len(l.Screens) == 0 {
		o.printf("No screens\n")
		return
	}
	for _, s := range l.Screens {
		o.printScreenStatus(s)
	}
}

func (o *Output) printScreen(s Screen) {
	o.printScreenStatus(s.ScreenStatus)
	if s.Game != nil {
		o.printf("  Ball: (%.0f, %.0f) velocity (%.1f, %.1f)\n", s.Game.Ball.X, s.Game.Ball.Y, s.Game.Ball.VX, s.Game.Ball.VY)
	}
}

func (o *Output) printScoreList(l ScoreList) {
	if len(l.Scores) == 0 {
		o.printf("No matches played\n")
		return
	}
	for _, s := range l.Scores {
		forfeit := ""
		if s.Forfeit {
			forfeit = " (forfeit)"
		}
		o.printf("[%s] %s: %s won %d-%d%s\n",
			s.FinishedAt.Format("2006-01-02 15:04:05"), s.Screen, s.Winner, s.Player1, s.Player2, forfeit)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Leaderboard) == 0 {
		o.printf("No winners yet\n")
		return
	}
	for _, e := range l.Leaderboard {
		o.printf("%3d. %s (%d wins)\n", e.Rank, e.PlayerID, e.Wins)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
