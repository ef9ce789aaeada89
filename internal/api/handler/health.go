package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/screenpong/internal/api/response"
	"github.com/mcoot/screenpong/internal/storage"
)

const pingTimeout = 2 * time.Second

// ClientCounter reports connected realtime clients
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler reports liveness and storage reachability
type HealthHandler struct {
	store   storage.Storage
	clients ClientCounter
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store storage.Storage, clients ClientCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, clients: clients, logger: logger}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	body := response.Health{Status: "ok", Storage: "ok", Clients: h.clients.ClientCount()}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("storage health check failed", slog.String("error", err.Error()))
		body.Status = "degraded"
		body.Storage = "unavailable"
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, body)
}
