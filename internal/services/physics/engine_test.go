package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/screenpong/internal/model"
)

func newState(cfg model.GameConfig) *model.GameState {
	return model.NewGameState(cfg)
}

// aimAtLeftPaddle positions the ball one unit short of the left paddle face,
// travelling left, at the given fraction along the paddle
func aimAtLeftPaddle(g *model.GameState, cfg model.GameConfig, along float64) {
	g.Ball.X = cfg.PaddleOffset + cfg.PaddleWidth + cfg.BallRadius
	g.Ball.Y = g.Player1.Y + along*cfg.PaddleHeight
	g.Ball.VX = -1
	g.Ball.VY = 0
}

func TestStepBall_SpeedAfterConsecutiveHits(t *testing.T) {
	cfg := model.DefaultGameConfig()

	tests := []struct {
		hits     int
		expected float64
	}{
		{hits: 1, expected: 6.3},
		{hits: 10, expected: 9},
		{hits: 30, expected: 15},
		{hits: 31, expected: 15},
		{hits: 50, expected: 15},
	}

	for _, tt := range tests {
		g := newState(cfg)
		for i := 0; i < tt.hits; i++ {
			aimAtLeftPaddle(g, cfg, 0.5)
			res := StepBall(g, cfg)
			require.Equal(t, model.Slot1, res.PaddleHit, "hit %d", i)
		}
		assert.InDelta(t, tt.expected, g.Ball.Speed, 1e-9, "after %d hits", tt.hits)
		assert.LessOrEqual(t, g.Ball.Speed, cfg.BallMaxSpeed)
	}
}

func TestStepBall_MinimumVerticalSpeedAfterBounce(t *testing.T) {
	cfg := model.DefaultGameConfig()

	for _, along := range []float64{0, 0.1, 0.25, 0.49, 0.5, 0.51, 0.75, 0.9, 1} {
		g := newState(cfg)
		aimAtLeftPaddle(g, cfg, along)
		res := StepBall(g, cfg)

		require.Equal(t, model.Slot1, res.PaddleHit, "along=%v", along)
		assert.GreaterOrEqual(t, math.Abs(g.Ball.VY), cfg.BallMinAngle, "along=%v", along)
		assert.Greater(t, g.Ball.VX, 0.0, "ball must head right after a left paddle hit")
	}
}

func TestStepBall_CentreHitGetsMinimumAngle(t *testing.T) {
	cfg := model.DefaultGameConfig()
	g := newState(cfg)
	aimAtLeftPaddle(g, cfg, 0.5)

	StepBall(g, cfg)

	assert.InDelta(t, cfg.BallMinAngle, g.Ball.VY, 1e-9)
	assert.InDelta(t, cfg.PaddleOffset+cfg.PaddleWidth+cfg.BallRadius, g.Ball.X, 1e-9)
}

func TestStepBall_RightPaddleReturnsLeft(t *testing.T) {
	cfg := model.DefaultGameConfig()
	g := newState(cfg)
	face := cfg.CanvasWidth - cfg.PaddleOffset - cfg.PaddleWidth
	g.Ball.X = face - cfg.BallRadius
	g.Ball.Y = g.Player2.Y + cfg.PaddleHeight*0.9
	g.Ball.VX = 1
	g.Ball.VY = 0

	res := StepBall(g, cfg)

	assert.Equal(t, model.Slot2, res.PaddleHit)
	assert.Equal(t, model.SlotNone, res.Scorer)
	assert.Less(t, g.Ball.VX, 0.0)
	assert.Greater(t, g.Ball.VY, 0.0, "hit below centre deflects downward")
	assert.InDelta(t, face-cfg.BallRadius, g.Ball.X, 1e-9)
}

func TestStepBall_WallBounce(t *testing.T) {
	cfg := model.DefaultGameConfig()
	g := newState(cfg)
	g.Ball.X = cfg.CanvasWidth / 2
	g.Ball.Y = cfg.BallRadius + 1
	g.Ball.VX = 2
	g.Ball.VY = -5

	res := StepBall(g, cfg)

	assert.True(t, res.WallBounce)
	assert.Equal(t, 5.0, g.Ball.VY)
	assert.Equal(t, cfg.BallRadius, g.Ball.Y)
}

func TestStepBall_Scoring(t *testing.T) {
	cfg := model.DefaultGameConfig()

	tests := []struct {
		name     string
		x        float64
		vx       float64
		expected model.Slot
	}{
		{name: "left goal scores for player 2", x: cfg.BallRadius + 1, vx: -2, expected: model.Slot2},
		{name: "right goal scores for player 1", x: cfg.CanvasWidth - cfg.BallRadius - 1, vx: 2, expected: model.Slot1},
		{name: "mid field", x: cfg.CanvasWidth / 2, vx: 2, expected: model.SlotNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newState(cfg)
			// Move paddles out of the way
			g.Player1.Y = 0
			g.Player2.Y = 0
			g.Ball.X = tt.x
			g.Ball.Y = cfg.CanvasHeight - 100
			g.Ball.VX = tt.vx
			g.Ball.VY = 0

			res := StepBall(g, cfg)
			assert.Equal(t, tt.expected, res.Scorer)
		})
	}
}

func TestResetBall_ServesAwayFromServer(t *testing.T) {
	cfg := model.DefaultGameConfig()

	g := newState(cfg)
	g.ServingPlayer = model.Slot1
	ResetBall(g, cfg, 0.5)
	assert.InDelta(t, cfg.BallInitialSpeed, g.Ball.VX, 1e-9)
	assert.InDelta(t, 0, g.Ball.VY, 1e-9)
	assert.Equal(t, cfg.CanvasWidth/2, g.Ball.X)

	g.ServingPlayer = model.Slot2
	g.Ball.Speed = 12
	ResetBall(g, cfg, 0)
	assert.Less(t, g.Ball.VX, 0.0)
	assert.Equal(t, cfg.BallInitialSpeed, g.Ball.Speed)
	assert.InDelta(t, cfg.BallInitialSpeed*math.Sin(-math.Pi/6), g.Ball.VY, 1e-9)
}

func TestSetPaddlePosition_Clamps(t *testing.T) {
	cfg := model.DefaultGameConfig()
	maxY := cfg.CanvasHeight - cfg.PaddleHeight

	tests := []struct {
		position float64
		expected float64
	}{
		{position: -1, expected: 0},
		{position: 0, expected: 0},
		{position: 0.5, expected: maxY / 2},
		{position: 1, expected: maxY},
		{position: 3, expected: maxY},
	}

	for _, tt := range tests {
		p := &model.Paddle{Velocity: 8}
		SetPaddlePosition(p, cfg, tt.position)
		assert.Equal(t, tt.expected, p.Y, "position %v", tt.position)
		assert.Zero(t, p.Velocity)
	}
}

func TestMovePaddleAndStep(t *testing.T) {
	cfg := model.DefaultGameConfig()
	p := &model.Paddle{Y: 4}

	MovePaddle(p, cfg, model.PaddleUp)
	assert.Equal(t, 0.0, p.Y)
	assert.Equal(t, -cfg.PaddleSpeed, p.Velocity)

	StepPaddle(p, cfg)
	assert.Equal(t, 0.0, p.Y, "paddle stays on the canvas")

	MovePaddle(p, cfg, model.PaddleDown)
	assert.Equal(t, cfg.PaddleSpeed, p.Y)
	StepPaddle(p, cfg)
	assert.Equal(t, 2*cfg.PaddleSpeed, p.Y)

	MovePaddle(p, cfg, model.PaddleStop)
	StepPaddle(p, cfg)
	assert.Equal(t, 2*cfg.PaddleSpeed, p.Y)
}

func TestWinner(t *testing.T) {
	cfg := model.DefaultGameConfig()
	g := newState(cfg)

	assert.Equal(t, model.SlotNone, Winner(g, cfg))
	g.Player1.Score = 4
	g.Player2.Score = 3
	assert.Equal(t, model.SlotNone, Winner(g, cfg))
	g.Player2.Score = 5
	assert.Equal(t, model.Slot2, Winner(g, cfg))
}
