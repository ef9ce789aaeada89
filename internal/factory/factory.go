package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/screenpong/internal/config"
	"github.com/mcoot/screenpong/internal/dependencies/clock"
	"github.com/mcoot/screenpong/internal/dependencies/random"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/services/match"
	"github.com/mcoot/screenpong/internal/storage"
	"github.com/mcoot/screenpong/internal/storage/memory"
	redisstorage "github.com/mcoot/screenpong/internal/storage/redis"
	"github.com/mcoot/screenpong/internal/transport/sse"
	"github.com/mcoot/screenpong/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Coordinator *match.Coordinator

	// Transport
	Hub       *ws.Hub
	Broker    *sse.Broker
	WSHandler *ws.Handler

	Screens []model.ScreenID
	logger  *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Game holds the simulation tunables; zero value means model.DefaultGameConfig()
	Game model.GameConfig
	// Screens lists the screen ids; empty means config.DefaultScreens
	Screens []model.ScreenID
	// AllowedOrigins restricts websocket upgrades; empty allows any origin
	AllowedOrigins []string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	game := cfg.Game
	if game == (model.GameConfig{}) {
		game = model.DefaultGameConfig()
	}
	if err := game.Validate(); err != nil {
		return nil, err
	}

	screens := cfg.Screens
	if len(screens) == 0 {
		screens = config.DefaultScreens
	}

	return newWithDependencies(store, clock.New(), random.New(), newMatchID, game, screens, cfg.AllowedOrigins, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	newID match.IDFunc,
	game model.GameConfig,
	screens []model.ScreenID,
	allowedOrigins []string,
	logger *slog.Logger,
) *App {
	broker := sse.NewBroker(screens, logger)
	hub := ws.NewHub(logger, broker)
	go hub.Run()

	coordinator := match.NewCoordinator(game, screens, hub, store, clk, rnd, newID, logger)
	wsHandler := ws.NewHandler(hub, coordinator, allowedOrigins, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Coordinator: coordinator,
		Hub:         hub,
		Broker:      broker,
		WSHandler:   wsHandler,
		Screens:     coordinator.Screens(),
		logger:      logger,
	}
}

// Close stops the coordinator first so no effect reaches a closed hub, then
// the transports, then storage
func (a *App) Close(ctx context.Context) error {
	err := a.Coordinator.Shutdown(ctx)
	a.Hub.Close()
	a.Broker.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	if err != nil {
		a.logger.Error("application shutdown incomplete", slog.String("error", err.Error()))
	}
	return err
}

func newMatchID() model.MatchID {
	return model.MatchID(uuid.NewString())
}
