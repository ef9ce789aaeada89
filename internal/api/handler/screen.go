package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/mcoot/screenpong/internal/api/apierr"
	"github.com/mcoot/screenpong/internal/api/response"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/services/match"
	"github.com/mcoot/screenpong/internal/transport/sse"
)

// qrSize is the edge length of join QR codes in pixels
const qrSize = 256

// Screens is the part of the match coordinator the screen endpoints use
type Screens interface {
	Statuses() []model.ScreenStatus
	Status(id model.ScreenID) (model.ScreenStatus, error)
	Snapshot(id model.ScreenID) (*model.GameState, error)
	Replay(id model.ScreenID) ([]model.ReplayFrame, error)
	Handle(ev match.Event)
}

// ScreenHandler handles screen status, spectating and admin endpoints
type ScreenHandler struct {
	screens   Screens
	broker    *sse.Broker
	game      model.GameConfig
	publicURL string
	logger    *slog.Logger
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(screens Screens, broker *sse.Broker, game model.GameConfig, publicURL string, logger *slog.Logger) *ScreenHandler {
	return &ScreenHandler{
		screens:   screens,
		broker:    broker,
		game:      game,
		publicURL: publicURL,
		logger:    logger,
	}
}

// Config handles GET /api/v1/config
func (h *ScreenHandler) Config(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.GameConfigFromModel(h.game))
}

// List handles GET /api/v1/screens
func (h *ScreenHandler) List(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Screens{Screens: h.screens.Statuses()})
}

// Get handles GET /api/v1/screens/{id}
func (h *ScreenHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := screenID(r)

	status, err := h.screens.Status(id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	game, err := h.screens.Snapshot(id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Screen{ScreenStatus: status, Game: game})
}

// Replay handles GET /api/v1/screens/{id}/replay
func (h *ScreenHandler) Replay(w http.ResponseWriter, r *http.Request) {
	id := screenID(r)

	frames, err := h.screens.Replay(id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if frames == nil {
		frames = []model.ReplayFrame{}
	}

	response.JSON(w, http.StatusOK, response.Replay{ScreenID: id, Frames: frames})
}

// QR handles GET /api/v1/screens/{id}/qr.png with a code for the join page
func (h *ScreenHandler) QR(w http.ResponseWriter, r *http.Request) {
	id := screenID(r)
	if _, err := h.screens.Status(id); err != nil {
		apierr.WriteError(w, err)
		return
	}

	png, err := qrcode.Encode(h.JoinURL(id), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("failed to encode qr code",
			slog.String("screen_id", string(id)),
			slog.String("error", err.Error()))
		apierr.WriteError(w, apierr.NewInternalError())
		return
	}

	response.Image(w, "image/png", png)
}

// JoinURL returns the page a phone opens to queue for a screen
func (h *ScreenHandler) JoinURL(id model.ScreenID) string {
	return h.publicURL + "/play?screen=" + url.QueryEscape(string(id))
}

// Events handles GET /api/v1/screens/{id}/events, a spectator SSE stream
func (h *ScreenHandler) Events(w http.ResponseWriter, r *http.Request) {
	hub := h.broker.Hub(screenID(r))
	if hub == nil {
		apierr.WriteError(w, model.ErrScreenNotFound)
		return
	}
	sse.ServeSSE(w, r, hub)
}

// Reset handles POST /api/v1/screens/{id}/reset (admin only)
func (h *ScreenHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id := screenID(r)
	if _, err := h.screens.Status(id); err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.screens.Handle(match.Reset{Screen: id})
	h.logger.Warn("screen reset by admin",
		slog.String("screen_id", string(id)),
		slog.String("remote_addr", r.RemoteAddr))

	response.JSON(w, http.StatusOK, response.Reset{ScreenID: id, Reset: true})
}

func screenID(r *http.Request) model.ScreenID {
	return model.ScreenID(mux.Vars(r)["id"])
}
