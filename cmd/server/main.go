package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/screenpong/internal/api"
	"github.com/mcoot/screenpong/internal/config"
	"github.com/mcoot/screenpong/internal/factory"
	redisstorage "github.com/mcoot/screenpong/internal/storage/redis"
)

// closeTimeout bounds pending score writes after the server stops
const closeTimeout = 10 * time.Second

func main() {
	// Set up logging with JSON output
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	// Build factory config
	factoryCfg := factory.Config{
		Logger:         logger,
		StorageType:    cfg.StorageType,
		Game:           cfg.Game,
		Screens:        cfg.Screens,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, admin endpoints disabled")
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		Storage:           app.Storage,
		Coordinator:       app.Coordinator,
		Hub:               app.Hub,
		Broker:            app.Broker,
		WSHandler:         app.WSHandler,
		Game:              cfg.Game,
		PublicURL:         cfg.PublicURL,
		AdminPasswordHash: cfg.AdminPasswordHash,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.OnShutdown(app.Broker.Close)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting",
		slog.String("addr", server.Addr()),
		slog.Int("screens", len(app.Screens)),
		slog.String("storage", cfg.StorageType))

	runErr := server.Run(ctx)
	if runErr != nil {
		logger.Error("server error", slog.String("error", runErr.Error()))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := app.Close(closeCtx); err != nil || runErr != nil {
		cancel()
		os.Exit(1)
	}

	logger.Info("server stopped")
}
