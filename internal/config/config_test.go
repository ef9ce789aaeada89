package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/testutil"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "PONG_SCREENS", "STORAGE_TYPE", "PUBLIC_URL", "ALLOWED_ORIGINS", "PONG_WIN_SCORE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(testutil.NopLogger(), missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DefaultScreens, cfg.Screens)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, model.DefaultGameConfig(), cfg.Game)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PONG_SCREENS", "left, right,,centre")
	t.Setenv("PUBLIC_URL", "https://pong.example/")
	t.Setenv("ALLOWED_ORIGINS", "https://pong.example,https://kiosk.example")
	t.Setenv("PONG_WIN_SCORE", "3")
	t.Setenv("PONG_BALL_SPEED", "7.5")
	t.Setenv("PONG_RECONNECT_GRACE", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(testutil.NopLogger(), missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []model.ScreenID{"left", "right", "centre"}, cfg.Screens)
	assert.Equal(t, "https://pong.example", cfg.PublicURL)
	assert.Equal(t, []string{"https://pong.example", "https://kiosk.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.Game.WinScore)
	assert.InDelta(t, 7.5, cfg.Game.BallInitialSpeed, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.Game.ReconnectGrace)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestGeometryOverrides(t *testing.T) {
	env := map[string]string{
		"PONG_CANVAS_WIDTH":         "1920",
		"PONG_CANVAS_HEIGHT":        "1080",
		"PONG_PADDLE_WIDTH":         "20",
		"PONG_PADDLE_HEIGHT":        "160",
		"PONG_PADDLE_OFFSET":        "40",
		"PONG_BALL_RADIUS":          "16",
		"PONG_BALL_SPEED_INCREMENT": "0.5",
		"PONG_BALL_MIN_ANGLE":       "0.35",
		"PONG_REPLAY_FRAMES":        "600",
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg, err := Load(testutil.NopLogger(), missingEnvFile(t))
	require.NoError(t, err)

	want := model.DefaultGameConfig()
	want.CanvasWidth = 1920
	want.CanvasHeight = 1080
	want.PaddleWidth = 20
	want.PaddleHeight = 160
	want.PaddleOffset = 40
	want.BallRadius = 16
	want.BallSpeedIncrement = 0.5
	want.BallMinAngle = 0.35
	want.ReplayFrames = 600
	assert.Equal(t, want, cfg.Game)
}

func TestPaddleTallerThanCanvasIsRejected(t *testing.T) {
	t.Setenv("PONG_CANVAS_HEIGHT", "100")
	t.Setenv("PONG_PADDLE_HEIGHT", "120")

	_, err := Load(testutil.NopLogger(), missingEnvFile(t))
	assert.ErrorContains(t, err, "paddle height")
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("PONG_SERVE_DELAY", "soon")
	t.Setenv("PONG_PADDLE_SPEED", "fast")

	cfg, err := Load(testutil.NopLogger(), missingEnvFile(t))
	require.NoError(t, err)

	def := model.DefaultGameConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, def.ServeDelay, cfg.Game.ServeDelay)
	assert.InDelta(t, def.PaddleSpeed, cfg.Game.PaddleSpeed, 1e-9)
}

func TestUnplayableGameIsRejected(t *testing.T) {
	t.Setenv("PONG_WIN_SCORE", "0")

	_, err := Load(testutil.NopLogger(), missingEnvFile(t))
	assert.Error(t, err)
}

func TestRedisRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "")

	_, err := Load(testutil.NopLogger(), missingEnvFile(t))
	assert.Error(t, err)
}

func TestEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PONG_TEST_FROM_FILE=file\nPONG_TEST_SHADOWED=file\n"), 0o600))
	t.Setenv("PONG_TEST_FROM_FILE", "")
	t.Setenv("PONG_TEST_SHADOWED", "env")
	require.NoError(t, os.Unsetenv("PONG_TEST_FROM_FILE"))

	_, err := Load(testutil.NopLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, "file", os.Getenv("PONG_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("PONG_TEST_SHADOWED"))
}
