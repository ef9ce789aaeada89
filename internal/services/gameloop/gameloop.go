// Package gameloop runs one simulation tick of a screen's game and reports
// what happened. Scheduling the ticks is left to the caller.
package gameloop

import (
	"github.com/mcoot/screenpong/internal/dependencies/random"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/services/physics"
)

// Outcome is the result of a single tick
type Outcome struct {
	// Scorer is the slot that won a point this tick, or SlotNone
	Scorer model.Slot
	// Winner is set once the scorer reaches the win score
	Winner model.Slot
	// PaddleHit is the slot that returned the ball, or SlotNone
	PaddleHit model.Slot
}

// Step advances paddles and, while the game is active, the ball. A point
// pauses the game and hands the serve to the scorer.
func Step(g *model.GameState, cfg model.GameConfig) Outcome {
	physics.StepPaddle(&g.Player1, cfg)
	physics.StepPaddle(&g.Player2, cfg)

	if !g.Active {
		return Outcome{}
	}

	res := physics.StepBall(g, cfg)
	out := Outcome{PaddleHit: res.PaddleHit}
	if res.Scorer == model.SlotNone {
		return out
	}

	g.Paddle(res.Scorer).Score++
	g.ServingPlayer = res.Scorer
	g.Active = false
	out.Scorer = res.Scorer
	out.Winner = physics.Winner(g, cfg)
	return out
}

// Serve puts the ball back in play toward the side opposite the server
func Serve(g *model.GameState, cfg model.GameConfig, rnd random.Random) {
	physics.ResetBall(g, cfg, rnd.Float64())
	g.Active = true
}

// Record appends the current state to a replay, dropping the oldest frames
// once limit is reached. A non-positive limit disables recording.
func Record(replay []model.ReplayFrame, g *model.GameState, limit int) []model.ReplayFrame {
	if limit <= 0 {
		return replay
	}
	replay = append(replay, g.Frame())
	if over := len(replay) - limit; over > 0 {
		replay = append(replay[:0], replay[over:]...)
	}
	return replay
}
