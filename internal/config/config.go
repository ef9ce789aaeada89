// Package config reads server settings from the environment, with an
// optional .env file loaded first.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/screenpong/internal/model"
)

// DefaultScreens is used when PONG_SCREENS is unset
var DefaultScreens = []model.ScreenID{"display_1", "display_2", "display_3"}

// Config holds everything cmd/server needs to build the application
type Config struct {
	Host string
	Port int

	Screens []model.ScreenID
	Game    model.GameConfig

	StorageType string
	RedisURL    string

	// AdminPasswordHash is a bcrypt hash; empty disables admin endpoints
	AdminPasswordHash string

	// PublicURL is the base URL encoded into join QR codes
	PublicURL string

	// AllowedOrigins restricts websocket origins; empty allows all
	AllowedOrigins []string

	LogLevel slog.Level
}

// Load reads the configuration. Each file in envFiles is loaded if present
// (".env" when none are given); variables already set in the environment win.
func Load(logger *slog.Logger, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	l := loader{logger: logger}
	cfg := Config{
		Host:              getEnvOrDefault("HOST", ""),
		Port:              l.int("PORT", 8080),
		Screens:           l.screens("PONG_SCREENS"),
		StorageType:       getEnvOrDefault("STORAGE_TYPE", "memory"),
		RedisURL:          os.Getenv("REDIS_URL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		PublicURL:         strings.TrimSuffix(getEnvOrDefault("PUBLIC_URL", "http://localhost:8080"), "/"),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		LogLevel:          l.level("LOG_LEVEL", slog.LevelInfo),
	}

	game := model.DefaultGameConfig()
	game.CanvasWidth = l.float("PONG_CANVAS_WIDTH", game.CanvasWidth)
	game.CanvasHeight = l.float("PONG_CANVAS_HEIGHT", game.CanvasHeight)
	game.PaddleWidth = l.float("PONG_PADDLE_WIDTH", game.PaddleWidth)
	game.PaddleHeight = l.float("PONG_PADDLE_HEIGHT", game.PaddleHeight)
	game.PaddleSpeed = l.float("PONG_PADDLE_SPEED", game.PaddleSpeed)
	game.PaddleOffset = l.float("PONG_PADDLE_OFFSET", game.PaddleOffset)
	game.BallRadius = l.float("PONG_BALL_RADIUS", game.BallRadius)
	game.BallInitialSpeed = l.float("PONG_BALL_SPEED", game.BallInitialSpeed)
	game.BallSpeedIncrement = l.float("PONG_BALL_SPEED_INCREMENT", game.BallSpeedIncrement)
	game.BallMaxSpeed = l.float("PONG_BALL_MAX_SPEED", game.BallMaxSpeed)
	game.BallMinAngle = l.float("PONG_BALL_MIN_ANGLE", game.BallMinAngle)
	game.WinScore = l.int("PONG_WIN_SCORE", game.WinScore)
	game.TickRate = l.int("PONG_TICK_RATE", game.TickRate)
	game.ReplayFrames = l.int("PONG_REPLAY_FRAMES", game.ReplayFrames)
	game.ServeDelay = l.duration("PONG_SERVE_DELAY", game.ServeDelay)
	game.ConfirmationTimeout = l.duration("PONG_CONFIRMATION_TIMEOUT", game.ConfirmationTimeout)
	game.ReconnectGrace = l.duration("PONG_RECONNECT_GRACE", game.ReconnectGrace)
	game.CountdownSteps = l.int("PONG_COUNTDOWN_STEPS", game.CountdownSteps)
	game.CountdownInterval = l.duration("PONG_COUNTDOWN_INTERVAL", game.CountdownInterval)
	if err := game.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Game = game

	if cfg.StorageType == "redis" && cfg.RedisURL == "" {
		return Config{}, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
	}

	return cfg, nil
}

// getEnvOrDefault returns the variable's value, or def when it is unset or empty
func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loader parses typed values, warning and falling back on bad input
type loader struct {
	logger *slog.Logger
}

func (l loader) invalid(key, value string, err error) {
	l.logger.Warn("invalid config value, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.String("error", err.Error()))
}

func (l loader) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.invalid(key, v, err)
		return def
	}
	return n
}

func (l loader) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		l.invalid(key, v, err)
		return def
	}
	return f
}

func (l loader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.invalid(key, v, err)
		return def
	}
	return d
}

func (l loader) level(key string, def slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		l.invalid(key, v, err)
		return def
	}
	return lvl
}

func (l loader) screens(key string) []model.ScreenID {
	names := splitList(os.Getenv(key))
	if len(names) == 0 {
		return append([]model.ScreenID(nil), DefaultScreens...)
	}
	ids := make([]model.ScreenID, 0, len(names))
	for _, n := range names {
		ids = append(ids, model.ScreenID(n))
	}
	return ids
}

// splitList splits a comma separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
