package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "scored",
			data:      `{"scorer":1}`,
			expected:  "event: scored\ndata: {\"scorer\":1}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "notice",
			data:      "line1\nline2",
			expected:  "event: notice\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2\r\n",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub("display_1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	c1 := NewClient(hub)
	c2 := NewClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.BroadcastEvent("game-start", "{}")

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "event: game-start\ndata: {}\n\n", string(msg))
		case <-time.After(time.Second):
			t.Fatal("client did not receive message")
		}
	}

	hub.Unregister(c1)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	_, ok := <-c1.send
	assert.False(t, ok)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub("display_1", testutil.NopLogger())
	go hub.Run()

	c := NewClient(hub)
	hub.Register(c)
	hub.Close()
	hub.Close()

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client not disconnected")
	}
}

func TestBroker_PublishSkipsTickUpdates(t *testing.T) {
	broker := NewBroker([]model.ScreenID{"display_1", "display_2"}, testutil.NopLogger())
	defer broker.Close()

	hub := broker.Hub("display_1")
	require.NotNil(t, hub)
	assert.Nil(t, broker.Hub("display_9"))

	c := NewClient(hub)
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	broker.Publish("display_1", model.NewMessage(model.EventUpdateGame, model.GameState{}))
	broker.Publish("display_2", model.NewMessage(model.EventCountdown, model.CountdownPayload{Count: 3}))
	broker.Publish("display_9", model.NewMessage(model.EventCountdown, model.CountdownPayload{Count: 3}))
	broker.Publish("display_1", model.NewMessage(model.EventGameOver, model.GameOverPayload{
		Winner:     model.Slot2,
		FinalScore: model.FinalScore{Player1: 2, Player2: 5},
	}))
	broker.Publish("display_1", model.NewMessage(model.EventGameStart, nil))

	select {
	case msg := <-c.send:
		assert.Equal(t,
			"event: game-over\ndata: {\"winner\":2,\"finalScore\":{\"player1\":2,\"player2\":5}}\n\n",
			string(msg))
	case <-time.After(time.Second):
		t.Fatal("spectator did not receive game-over")
	}
	select {
	case msg := <-c.send:
		assert.Equal(t, "event: game-start\ndata: {}\n\n", string(msg))
	case <-time.After(time.Second):
		t.Fatal("spectator did not receive game-start")
	}
}

func TestServeSSE(t *testing.T) {
	hub := NewHub("display_1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/screens/display_1/events", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	go func() {
		if assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond) {
			hub.BroadcastEvent("serve", `{"servingPlayer":1}`)
		}
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	ServeSSE(rr, req, hub)

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rr.Header().Get("X-Accel-Buffering"))

	body := rr.Body.String()
	assert.Contains(t, body, "retry: 3000")
	assert.Contains(t, body, "event: connected\ndata: {\"screenId\":\"display_1\"}")
	assert.Contains(t, body, "event: serve\ndata: {\"servingPlayer\":1}")
}
