package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/screenpong/internal/api/apierr"
	"github.com/mcoot/screenpong/internal/api/request"
	"github.com/mcoot/screenpong/internal/api/response"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/storage"
)

// ScoreHandler serves match history and the leaderboard
type ScoreHandler struct {
	store storage.Storage
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(store storage.Storage) *ScoreHandler {
	return &ScoreHandler{store: store}
}

// List handles GET /api/v1/scores
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := request.Limit(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	entries, err := h.store.ListScores(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoresFromModel(entries))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *ScoreHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := request.Limit(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	entries, err := h.store.Leaderboard(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}

	response.JSON(w, http.StatusOK, response.Leaderboard{Leaderboard: entries})
}

// PlayerWins handles GET /api/v1/players/{id}/wins
func (h *ScoreHandler) PlayerWins(w http.ResponseWriter, r *http.Request) {
	id := model.LobbyID(mux.Vars(r)["id"])

	wins, err := h.store.PlayerWins(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerWins{PlayerID: string(id), Wins: wins})
}
