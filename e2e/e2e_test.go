package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/screenpong/internal/api"
	"github.com/mcoot/screenpong/internal/cli"
	"github.com/mcoot/screenpong/internal/factory"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/testutil"
)

const adminPassword = "festival"

type envelope struct {
	Type    model.EventType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outbound struct {
	Type    model.EventType `json:"type"`
	Payload any             `json:"payload,omitempty"`
}

// testEnv is a running server with a fast countdown
type testEnv struct {
	t   *testing.T
	app *factory.App
	srv *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	game := model.DefaultGameConfig()
	game.CountdownInterval = 20 * time.Millisecond
	game.ServeDelay = 50 * time.Millisecond

	app, err := factory.New(factory.Config{
		Logger:  testutil.NopLogger(),
		Game:    game,
		Screens: []model.ScreenID{"display_1", "display_2"},
	})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
		Storage:           app.Storage,
		Coordinator:       app.Coordinator,
		Hub:               app.Hub,
		Broker:            app.Broker,
		WSHandler:         app.WSHandler,
		Game:              game,
		PublicURL:         "http://pong.test",
		AdminPasswordHash: string(hash),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		_ = app.Close(context.Background())
		srv.Close()
	})

	return &testEnv{t: t, app: app, srv: srv}
}

func (e *testEnv) dial(path string) *websocket.Conn {
	e.t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(e.t, err)
	_ = resp.Body.Close()
	e.t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (e *testEnv) send(conn *websocket.Conn, eventType model.EventType, payload any) {
	e.t.Helper()
	require.NoError(e.t, conn.WriteJSON(outbound{Type: eventType, Payload: payload}))
}

// readUntil reads frames until one of the wanted type arrives
func (e *testEnv) readUntil(conn *websocket.Conn, want model.EventType) envelope {
	e.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(e.t, conn.SetReadDeadline(deadline))
		var env envelope
		require.NoError(e.t, conn.ReadJSON(&env), "waiting for %s", want)
		if env.Type == want {
			return env
		}
	}
}

func payload[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Payload, &v))
	return v
}

// runCLI runs pongctl in-process against the test server
func (e *testEnv) runCLI(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", e.srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// player is a phone: a lobby connection plus, once paired, a screen channel
type player struct {
	id     model.LobbyID
	lobby  *websocket.Conn
	screen *websocket.Conn
	slot   model.Slot
}

func (e *testEnv) connectPlayer() *player {
	conn := e.dial("/ws/lobby")
	welcome := payload[model.WelcomePayload](e.t, e.readUntil(conn, model.EventWelcome))
	require.NotEmpty(e.t, welcome.LobbyID)
	return &player{id: welcome.LobbyID, lobby: conn}
}

func (e *testEnv) connectDisplay(screen model.ScreenID) *websocket.Conn {
	conn := e.dial("/ws/screens/" + string(screen))
	welcome := payload[model.WelcomePayload](e.t, e.readUntil(conn, model.EventWelcome))
	require.Equal(e.t, screen, welcome.ScreenID)
	e.send(conn, model.EventDisplayConnect, nil)
	return conn
}

// startMatch queues two players on display_1 and plays the handshake through
// to game-start
func (e *testEnv) startMatch(display *websocket.Conn) (*player, *player) {
	p1 := e.connectPlayer()
	p2 := e.connectPlayer()

	for _, p := range []*player{p1, p2} {
		e.send(p.lobby, model.EventJoinScreenQueue, model.JoinScreenQueuePayload{ScreenID: "display_1"})
	}
	for _, p := range []*player{p1, p2} {
		found := payload[model.MatchFoundPayload](e.t, e.readUntil(p.lobby, model.EventMatchFound))
		require.Equal(e.t, model.ScreenID("display_1"), found.ScreenID)
		p.slot = found.Slot

		p.screen = e.dial("/ws/screens/display_1")
		e.readUntil(p.screen, model.EventWelcome)
		e.send(p.screen, model.EventPlayerReady, model.PlayerReadyPayload{LobbyID: p.id, Slot: p.slot})
		e.send(p.lobby, model.EventConfirmReady, nil)
	}

	for _, p := range []*player{p1, p2} {
		e.readUntil(p.lobby, model.EventBothReady)
	}
	e.readUntil(display, model.EventCountdownStart)
	e.readUntil(display, model.EventGameStart)

	if p1.slot == model.Slot2 {
		p1, p2 = p2, p1
	}
	return p1, p2
}

// Scenario: two phones queue on a screen, confirm, and play
func TestMatchOverWebsockets(t *testing.T) {
	e := newTestEnv(t)
	display := e.connectDisplay("display_1")

	p1, p2 := e.startMatch(display)
	assert.Equal(t, model.Slot1, p1.slot)
	assert.Equal(t, model.Slot2, p2.slot)

	update := payload[model.GameState](t, e.readUntil(display, model.EventUpdateGame))
	assert.True(t, update.Active)

	// Paddle input from slot 1's screen channel moves its paddle
	e.send(p1.screen, model.EventPaddlePosition, model.PaddlePositionPayload{Position: 0})
	require.Eventually(t, func() bool {
		g, err := e.app.Coordinator.Snapshot("display_1")
		return err == nil && g != nil && g.Player1.Y == 0
	}, 2*time.Second, 10*time.Millisecond)

	out, err := e.runCLI("screens", "display_1", "-o", "json")
	require.NoError(t, err, out)
	var screen cli.Screen
	require.NoError(t, json.Unmarshal([]byte(out), &screen))
	assert.Equal(t, "active", screen.State)
	assert.Equal(t, string(p1.id), screen.Player1ID)
	assert.Equal(t, string(p2.id), screen.Player2ID)
	require.NotNil(t, screen.Game)
	assert.True(t, screen.Game.Active)
}

func TestQueueRejectedWhenAlreadyQueued(t *testing.T) {
	e := newTestEnv(t)
	p := e.connectPlayer()

	e.send(p.lobby, model.EventJoinScreenQueue, model.JoinScreenQueuePayload{ScreenID: "display_2"})
	update := payload[model.QueueUpdatePayload](t, e.readUntil(p.lobby, model.EventQueueUpdate))
	assert.Equal(t, 1, update.Position)

	e.send(p.lobby, model.EventJoinScreenQueue, model.JoinScreenQueuePayload{ScreenID: "display_1"})
	e.readUntil(p.lobby, model.EventQueueRejected)
}

func TestAdminResetViaCLI(t *testing.T) {
	e := newTestEnv(t)
	display := e.connectDisplay("display_1")
	p1, _ := e.startMatch(display)

	_, err := e.runCLI("reset", "display_1")
	require.Error(t, err, "no admin password")

	_, err = e.runCLI("--admin-password", "wrong", "reset", "display_1")
	require.Error(t, err)

	out, err := e.runCLI("--admin-password", adminPassword, "reset", "display_1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Screen display_1 reset")

	e.readUntil(p1.lobby, model.EventMatchCancelled)
	e.readUntil(display, model.EventQueueReset)

	out, err = e.runCLI("screens", "-o", "json")
	require.NoError(t, err, out)
	var list cli.ScreenList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Screens, 2)
	assert.Equal(t, "idle", list.Screens[0].State)
}

func TestCLIReadCommands(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.app.Storage.SaveScore(ctx, &model.ScoreEntry{
		Screen: "display_1", Winner: "alice", Points: 5,
		FinalScore: model.FinalScore{Player1: 5, Player2: 4},
		Timestamp:  time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC),
	}))

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"health"}, "Status: ok"},
		{[]string{"scores"}, "display_1: alice won 5-4"},
		{[]string{"leaderboard", "-n", "5"}, "1. alice (1 wins)"},
		{[]string{"wins", "alice"}, "alice: 1 wins"},
		{[]string{"screens"}, "display_2 [idle] display offline, 0 queued"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := e.runCLI(tt.args...)
			require.NoError(t, err, out)
			assert.Contains(t, out, tt.want)
		})
	}

	out, err := e.runCLI("screens", "display_9")
	require.Error(t, err)
	assert.Contains(t, out, "SCREEN_NOT_FOUND")
}

// syncBuffer is a bytes.Buffer safe for a writer and a poller
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCLIEventStream(t *testing.T) {
	e := newTestEnv(t)

	var out syncBuffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--server", e.srv.URL, "events", "display_1"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	hub := e.app.Broker.Hub("display_1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/v1/screens/display_1/reset", nil)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Password", adminPassword)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "queue-reset")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("events command did not stop")
	}
	assert.Contains(t, out.String(), "Watching screen display_1")
	assert.Contains(t, out.String(), "connected")
}
