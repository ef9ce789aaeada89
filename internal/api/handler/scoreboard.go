package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/mcoot/screenpong/internal/api/response"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/storage"
)

// scoreboardRows is how many rows each scoreboard table shows
const scoreboardRows = 20

var scoreboardTemplate = template.Must(template.New("scoreboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="15">
<title>Pong scoreboard</title>
</head>
<body>
<h1>Scoreboard</h1>
<section id="screens">
<h2>Screens</h2>
<ul>
{{- range .Screens}}
<li class="screen" data-screen="{{.ID}}"><a href="{{$.JoinBase}}{{.ID}}">{{.ID}}</a> <span class="state">{{.State}}</span>{{if .Score}} <span class="score">{{.Score.Player1}}-{{.Score.Player2}}</span>{{end}} <img src="/api/v1/screens/{{.ID}}/qr.png" alt="Join {{.ID}}" width="128" height="128"></li>
{{- end}}
</ul>
</section>
<section>
<h2>Leaderboard</h2>
<table id="leaderboard">
<thead><tr><th>Rank</th><th>Player</th><th>Wins</th></tr></thead>
<tbody>
{{- range .Leaderboard}}
<tr><td class="rank">{{.Rank}}</td><td class="player">{{.PlayerID}}</td><td class="wins">{{.Wins}}</td></tr>
{{- else}}
<tr class="empty"><td colspan="3">No winners yet</td></tr>
{{- end}}
</tbody>
</table>
</section>
<section>
<h2>Recent matches</h2>
<table id="recent">
<thead><tr><th>Screen</th><th>Winner</th><th>Score</th><th>Finished</th></tr></thead>
<tbody>
{{- range .Scores}}
<tr{{if .Forfeit}} class="forfeit"{{end}}><td>{{.Screen}}</td><td class="winner">{{.Winner}}</td><td class="final">{{.Player1}}-{{.Player2}}</td><td><time datetime="{{.FinishedAt.Format "2006-01-02T15:04:05Z07:00"}}">{{.FinishedAt.Format "15:04"}}</time></td></tr>
{{- else}}
<tr class="empty"><td colspan="4">No matches played</td></tr>
{{- end}}
</tbody>
</table>
</section>
</body>
</html>
`))

type scoreboardData struct {
	Screens     []model.ScreenStatus
	Leaderboard []model.LeaderboardEntry
	Scores      []response.Score
	JoinBase    string
}

// ScoreboardHandler renders the public HTML scoreboard
type ScoreboardHandler struct {
	store    storage.Storage
	screens  Screens
	joinBase string
	logger   *slog.Logger
}

// NewScoreboardHandler creates a new scoreboard handler. Screen names link
// to publicURL's join page.
func NewScoreboardHandler(store storage.Storage, screens Screens, publicURL string, logger *slog.Logger) *ScoreboardHandler {
	return &ScoreboardHandler{
		store:    store,
		screens:  screens,
		joinBase: publicURL + "/play?screen=",
		logger:   logger,
	}
}

// Page handles GET /scores
func (h *ScoreboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.store.Leaderboard(r.Context(), scoreboardRows)
	if err != nil {
		h.fail(w, err)
		return
	}
	entries, err := h.store.ListScores(r.Context(), scoreboardRows)
	if err != nil {
		h.fail(w, err)
		return
	}

	data := scoreboardData{
		Screens:     h.screens.Statuses(),
		Leaderboard: leaders,
		Scores:      response.ScoresFromModel(entries).Scores,
		JoinBase:    h.joinBase,
	}

	// Render to a buffer so a template error never sends a half page
	var buf bytes.Buffer
	if err := scoreboardTemplate.Execute(&buf, data); err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *ScoreboardHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("failed to render scoreboard", slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
