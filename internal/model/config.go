package model

import (
	"fmt"
	"time"
)

// GameConfig holds every tunable of the simulation and the match lifecycle
type GameConfig struct {
	CanvasWidth  float64
	CanvasHeight float64

	PaddleWidth  float64
	PaddleHeight float64
	PaddleSpeed  float64
	PaddleOffset float64 // distance from the screen edge

	BallRadius         float64
	BallInitialSpeed   float64
	BallSpeedIncrement float64 // added on every paddle hit
	BallMaxSpeed       float64
	BallMinAngle       float64 // minimum |vy| after a paddle hit

	WinScore   int
	ServeDelay time.Duration
	TickRate   int // simulation ticks per second

	ConfirmationTimeout time.Duration
	ReconnectGrace      time.Duration
	CountdownSteps      int
	CountdownInterval   time.Duration

	// ReplayFrames bounds the per-match move history
	ReplayFrames int
}

// DefaultGameConfig returns the standard festival configuration
func DefaultGameConfig() GameConfig {
	return GameConfig{
		CanvasWidth:         1200,
		CanvasHeight:        900,
		PaddleWidth:         15,
		PaddleHeight:        120,
		PaddleSpeed:         8,
		PaddleOffset:        30,
		BallRadius:          12,
		BallInitialSpeed:    6,
		BallSpeedIncrement:  0.3,
		BallMaxSpeed:        15,
		BallMinAngle:        0.2,
		WinScore:            5,
		ServeDelay:          2 * time.Second,
		TickRate:            60,
		ConfirmationTimeout: 10 * time.Second,
		ReconnectGrace:      10 * time.Second,
		CountdownSteps:      3,
		CountdownInterval:   time.Second,
		ReplayFrames:        60 * 60 * 5,
	}
}

// TickInterval returns the duration of one simulation tick
func (c GameConfig) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

// Validate checks that the configuration can drive a game
func (c GameConfig) Validate() error {
	switch {
	case c.CanvasWidth <= 0 || c.CanvasHeight <= 0:
		return fmt.Errorf("canvas dimensions must be positive")
	case c.PaddleHeight <= 0 || c.PaddleHeight >= c.CanvasHeight:
		return fmt.Errorf("paddle height must be within the canvas height")
	case c.PaddleWidth <= 0 || c.PaddleOffset < 0:
		return fmt.Errorf("paddle width must be positive and offset non-negative")
	case c.BallRadius <= 0:
		return fmt.Errorf("ball radius must be positive")
	case c.BallInitialSpeed <= 0 || c.BallMaxSpeed < c.BallInitialSpeed:
		return fmt.Errorf("ball max speed must be at least the initial speed")
	case c.WinScore <= 0:
		return fmt.Errorf("win score must be positive")
	case c.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive")
	case c.ConfirmationTimeout <= 0 || c.ReconnectGrace <= 0:
		return fmt.Errorf("confirmation timeout and reconnect grace must be positive")
	case c.CountdownSteps <= 0 || c.CountdownInterval <= 0:
		return fmt.Errorf("countdown must have at least one positive step")
	}
	return nil
}
