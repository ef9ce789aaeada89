// Package physics advances ball and paddle state by one tick.
// Functions here mutate only the state passed to them and perform no I/O.
package physics

import (
	"math"

	"github.com/mcoot/screenpong/internal/model"
)

// maxBounceAngle bounds the outgoing angle of a paddle hit to ±60°
const maxBounceAngle = math.Pi / 3

// serveSpread is the full width of the random serve angle
const serveSpread = math.Pi / 3

// Result describes what happened during a ball step
type Result struct {
	// Scorer is the slot that won the point, or SlotNone
	Scorer model.Slot
	// PaddleHit is the slot whose paddle returned the ball, or SlotNone
	PaddleHit model.Slot
	// WallBounce is set when the ball reflected off the top or bottom wall
	WallBounce bool
}

// StepBall moves the ball one tick and resolves wall, paddle and goal
// collisions. At most one side can score per call.
func StepBall(g *model.GameState, cfg model.GameConfig) Result {
	var res Result
	ball := &g.Ball
	r := cfg.BallRadius

	ball.X += ball.VX
	ball.Y += ball.VY

	if ball.Y-r <= 0 || ball.Y+r >= cfg.CanvasHeight {
		ball.VY = -ball.VY
		ball.Y = clamp(ball.Y, r, cfg.CanvasHeight-r)
		res.WallBounce = true
	}

	leftFace := cfg.PaddleOffset + cfg.PaddleWidth
	if ball.VX < 0 &&
		ball.X-r <= leftFace && ball.X-r > cfg.PaddleOffset &&
		overlaps(ball.Y, g.Player1.Y, cfg.PaddleHeight) {
		bounce(ball, g.Player1.Y, cfg, 1)
		ball.X = leftFace + r
		res.PaddleHit = model.Slot1
	}

	rightFace := cfg.CanvasWidth - cfg.PaddleOffset - cfg.PaddleWidth
	if ball.VX > 0 &&
		ball.X+r >= rightFace && ball.X+r < cfg.CanvasWidth-cfg.PaddleOffset &&
		overlaps(ball.Y, g.Player2.Y, cfg.PaddleHeight) {
		bounce(ball, g.Player2.Y, cfg, -1)
		ball.X = rightFace - r
		res.PaddleHit = model.Slot2
	}

	switch {
	case ball.X-r <= 0:
		res.Scorer = model.Slot2
	case ball.X+r >= cfg.CanvasWidth:
		res.Scorer = model.Slot1
	}
	return res
}

// bounce reflects the ball off a paddle, speeding it up and deriving the
// outgoing angle from where along the paddle it hit
func bounce(ball *model.Ball, paddleY float64, cfg model.GameConfig, dir float64) {
	hit := (ball.Y - paddleY) / cfg.PaddleHeight
	ball.Speed = math.Min(ball.Speed+cfg.BallSpeedIncrement, cfg.BallMaxSpeed)

	angle := (hit - 0.5) * 2 * maxBounceAngle
	ball.VX = dir * math.Abs(ball.Speed*math.Cos(angle))
	ball.VY = ball.Speed * math.Sin(angle)

	if math.Abs(ball.VY) < cfg.BallMinAngle {
		if ball.VY < 0 {
			ball.VY = -cfg.BallMinAngle
		} else {
			ball.VY = cfg.BallMinAngle
		}
	}
}

// ResetBall centres the ball and serves it toward the side opposite the
// serving player. spread is a value in [0,1) that picks the serve angle.
func ResetBall(g *model.GameState, cfg model.GameConfig, spread float64) {
	ball := &g.Ball
	ball.X = cfg.CanvasWidth / 2
	ball.Y = cfg.CanvasHeight / 2
	ball.Speed = cfg.BallInitialSpeed
	ball.Radius = cfg.BallRadius

	angle := (spread - 0.5) * serveSpread
	dir := 1.0
	if g.ServingPlayer == model.Slot2 {
		dir = -1
	}
	ball.VX = dir * ball.Speed * math.Cos(angle)
	ball.VY = ball.Speed * math.Sin(angle)
}

// SetPaddlePosition places a paddle from a normalised position in [0,1].
// Out of range values are clamped.
func SetPaddlePosition(p *model.Paddle, cfg model.GameConfig, position float64) {
	if math.IsNaN(position) {
		return
	}
	p.Y = clamp(position, 0, 1) * (cfg.CanvasHeight - cfg.PaddleHeight)
	p.Velocity = 0
}

// MovePaddle applies a legacy keyboard direction
func MovePaddle(p *model.Paddle, cfg model.GameConfig, dir model.PaddleDirection) {
	maxY := cfg.CanvasHeight - cfg.PaddleHeight
	switch dir {
	case model.PaddleUp:
		p.Y = math.Max(0, p.Y-cfg.PaddleSpeed)
		p.Velocity = -cfg.PaddleSpeed
	case model.PaddleDown:
		p.Y = math.Min(maxY, p.Y+cfg.PaddleSpeed)
		p.Velocity = cfg.PaddleSpeed
	case model.PaddleStop:
		p.Velocity = 0
	}
}

// StepPaddle integrates paddle velocity, keeping the paddle on the canvas
func StepPaddle(p *model.Paddle, cfg model.GameConfig) {
	if p.Velocity == 0 {
		return
	}
	p.Y = clamp(p.Y+p.Velocity, 0, cfg.CanvasHeight-cfg.PaddleHeight)
}

// Winner returns the slot that has reached the win score, or SlotNone
func Winner(g *model.GameState, cfg model.GameConfig) model.Slot {
	switch {
	case g.Player1.Score >= cfg.WinScore:
		return model.Slot1
	case g.Player2.Score >= cfg.WinScore:
		return model.Slot2
	default:
		return model.SlotNone
	}
}

func overlaps(y, paddleY, height float64) bool {
	return y >= paddleY && y <= paddleY+height
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
