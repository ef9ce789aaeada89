package model

// Paddle is one player's side of the simulation
type Paddle struct {
	Score    int     `json:"score"`
	Y        float64 `json:"paddleY"`
	Velocity float64 `json:"paddleVelocity"`
}

// Ball holds position and velocity in canvas units per tick
type Ball struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"velocityX"`
	VY     float64 `json:"velocityY"`
	Speed  float64 `json:"speed"`
	Radius float64 `json:"radius"`
}

// GameState is the per-screen simulation state of one match
type GameState struct {
	Player1       Paddle `json:"player1"`
	Player2       Paddle `json:"player2"`
	Ball          Ball   `json:"ball"`
	Active        bool   `json:"active"`
	ServingPlayer Slot   `json:"servingPlayer"`
}

// FinalScore is the score line reported at match end
type FinalScore struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// NewGameState creates a fresh state with centred paddles and ball
func NewGameState(cfg GameConfig) *GameState {
	paddleY := cfg.CanvasHeight/2 - cfg.PaddleHeight/2
	return &GameState{
		Player1: Paddle{Y: paddleY},
		Player2: Paddle{Y: paddleY},
		Ball: Ball{
			X:      cfg.CanvasWidth / 2,
			Y:      cfg.CanvasHeight / 2,
			VX:     cfg.BallInitialSpeed,
			Speed:  cfg.BallInitialSpeed,
			Radius: cfg.BallRadius,
		},
		ServingPlayer: Slot1,
	}
}

// Paddle returns the paddle for a slot, or nil for an invalid slot
func (g *GameState) Paddle(slot Slot) *Paddle {
	switch slot {
	case Slot1:
		return &g.Player1
	case Slot2:
		return &g.Player2
	default:
		return nil
	}
}

// Scores returns the current score line
func (g *GameState) Scores() FinalScore {
	return FinalScore{Player1: g.Player1.Score, Player2: g.Player2.Score}
}

// Snapshot returns a copy safe to hand to other goroutines
func (g *GameState) Snapshot() GameState {
	return *g
}

// ReplayFrame is one recorded tick of a match
type ReplayFrame struct {
	Player1Y     float64 `json:"p1Y"`
	Player2Y     float64 `json:"p2Y"`
	Player1Score int     `json:"p1Score"`
	Player2Score int     `json:"p2Score"`
	BallX        float64 `json:"ballX"`
	BallY        float64 `json:"ballY"`
}

// Frame captures the current state as a replay frame
func (g *GameState) Frame() ReplayFrame {
	return ReplayFrame{
		Player1Y:     g.Player1.Y,
		Player2Y:     g.Player2.Y,
		Player1Score: g.Player1.Score,
		Player2Score: g.Player2.Score,
		BallX:        g.Ball.X,
		BallY:        g.Ball.Y,
	}
}
