package response

import (
	"time"

	"github.com/mcoot/screenpong/internal/model"
)

// Health is the body of GET /api/v1/health
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Clients int    `json:"clients"`
}

// GameConfig exposes the geometry and rules clients need to draw a game
type GameConfig struct {
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
	PaddleWidth  float64 `json:"paddleWidth"`
	PaddleHeight float64 `json:"paddleHeight"`
	PaddleOffset float64 `json:"paddleOffset"`
	BallRadius   float64 `json:"ballRadius"`
	WinScore     int     `json:"winScore"`
	TickRate     int     `json:"tickRate"`
}

// GameConfigFromModel converts model.GameConfig
func GameConfigFromModel(c model.GameConfig) GameConfig {
	return GameConfig{
		CanvasWidth:  c.CanvasWidth,
		CanvasHeight: c.CanvasHeight,
		PaddleWidth:  c.PaddleWidth,
		PaddleHeight: c.PaddleHeight,
		PaddleOffset: c.PaddleOffset,
		BallRadius:   c.BallRadius,
		WinScore:     c.WinScore,
		TickRate:     c.TickRate,
	}
}

// Screens lists every screen's status
type Screens struct {
	Screens []model.ScreenStatus `json:"screens"`
}

// Screen is one screen's status with its live game, if any
type Screen struct {
	model.ScreenStatus
	Game *model.GameState `json:"game,omitempty"`
}

// Replay is the recorded history of a screen's current or last match
type Replay struct {
	ScreenID model.ScreenID      `json:"screenId"`
	Frames   []model.ReplayFrame `json:"frames"`
}

// Score is one finished match
type Score struct {
	Screen     string    `json:"screen"`
	Winner     string    `json:"winner"`
	Points     int       `json:"points"`
	Player1    int       `json:"player1"`
	Player2    int       `json:"player2"`
	Forfeit    bool      `json:"forfeit,omitempty"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ScoreFromModel converts model.ScoreEntry
func ScoreFromModel(e *model.ScoreEntry) Score {
	return Score{
		Screen:     string(e.Screen),
		Winner:     string(e.Winner),
		Points:     e.Points,
		Player1:    e.FinalScore.Player1,
		Player2:    e.FinalScore.Player2,
		Forfeit:    e.Forfeit,
		FinishedAt: e.Timestamp,
	}
}

// Scores wraps a list of results, newest first
type Scores struct {
	Scores []Score `json:"scores"`
}

// ScoresFromModel converts a list of model.ScoreEntry
func ScoresFromModel(entries []*model.ScoreEntry) Scores {
	scores := make([]Score, len(entries))
	for i, e := range entries {
		scores[i] = ScoreFromModel(e)
	}
	return Scores{Scores: scores}
}

// Leaderboard wraps the ranked winners
type Leaderboard struct {
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}

// PlayerWins is a single player's win count
type PlayerWins struct {
	PlayerID string `json:"playerId"`
	Wins     int64  `json:"wins"`
}

// Reset acknowledges an admin reset
type Reset struct {
	ScreenID model.ScreenID `json:"screenId"`
	Reset    bool           `json:"reset"`
}
