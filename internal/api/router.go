package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/screenpong/internal/api/handler"
	"github.com/mcoot/screenpong/internal/api/middleware"
	basemiddleware "github.com/mcoot/screenpong/internal/middleware"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/storage"
	"github.com/mcoot/screenpong/internal/transport/sse"
	"github.com/mcoot/screenpong/internal/transport/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Storage     storage.Storage
	Coordinator handler.Screens
	Hub         *ws.Hub
	Broker      *sse.Broker
	WSHandler   *ws.Handler
	Game        model.GameConfig

	// PublicURL is the externally reachable base URL, without a trailing slash
	PublicURL string

	// AdminPasswordHash is a bcrypt hash; empty disables admin routes
	AdminPasswordHash string
}

// NewRouter creates a new router with the REST API, the spectator streams,
// the websocket endpoints and the scoreboard page
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.Hub, cfg.Logger)
	screenHandler := handler.NewScreenHandler(cfg.Coordinator, cfg.Broker, cfg.Game, cfg.PublicURL, cfg.Logger)
	scoreHandler := handler.NewScoreHandler(cfg.Storage)
	scoreboardHandler := handler.NewScoreboardHandler(cfg.Storage, cfg.Coordinator, cfg.PublicURL, cfg.Logger)

	// Create middleware
	adminMiddleware := middleware.Admin(cfg.AdminPasswordHash)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/config", screenHandler.Config).Methods(http.MethodGet)

	// Screen routes
	api.HandleFunc("/screens", screenHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/screens/{id}", screenHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/screens/{id}/replay", screenHandler.Replay).Methods(http.MethodGet)
	api.HandleFunc("/screens/{id}/qr.png", screenHandler.QR).Methods(http.MethodGet)
	api.HandleFunc("/screens/{id}/events", screenHandler.Events).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/screens").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/{id}/reset", screenHandler.Reset).Methods(http.MethodPost)

	// Score routes
	api.HandleFunc("/scores", scoreHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", scoreHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/wins", scoreHandler.PlayerWins).Methods(http.MethodGet)

	// Websocket channels
	sockets := r.PathPrefix("/ws").Subrouter()
	sockets.Use(basemiddleware.Recovery(cfg.Logger, basemiddleware.PlainPanicHandler))
	sockets.Use(loggingMiddleware)
	sockets.HandleFunc("/lobby", cfg.WSHandler.ServeLobby).Methods(http.MethodGet)
	sockets.HandleFunc("/screens/{id}", cfg.WSHandler.ServeScreen).Methods(http.MethodGet)

	// Pages
	pages := r.NewRoute().Subrouter()
	pages.Use(basemiddleware.Recovery(cfg.Logger, basemiddleware.PlainPanicHandler))
	pages.Use(loggingMiddleware)
	pages.HandleFunc("/scores", scoreboardHandler.Page).Methods(http.MethodGet)

	return r
}
