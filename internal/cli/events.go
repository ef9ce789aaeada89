package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		only       []string
	)

	cmd := &cobra.Command{
		Use:   "events <screen>",
		Short: "Stream spectator events from a screen",
		Long: `Connect to the screen's SSE endpoint and stream events in real-time.

Events include:
  - connected: Stream opened
  - countdown-start, countdown: Pre-game countdown
  - game-start: A match began
  - scored, serve: A point was scored and the next serve
  - game-over: A match finished
  - waiting-for-challenger: The winner holds the screen
  - enable-blinking, disable-blinking: A player dropped or came back
  - queue-reset: The screen was reset

Per-tick game updates are not streamed. Press Ctrl+C to disconnect.`,
		Example: `  pongctl events display_1
  pongctl events display_1 --only scored,game-over --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			w := &eventWriter{w: cmd.OutOrStdout(), json: jsonOutput, only: only}
			return streamEvents(ctx, w, args[0])
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Only show these event types")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func streamEvents(ctx context.Context, w *eventWriter, screen string) error {
	endpoint := strings.TrimSuffix(cfg.ServerURL, "/") + "/api/v1/screens/" + url.PathEscape(screen) + "/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// The default client has no timeout, which a long-lived stream needs
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("screen %s not found", screen)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	w.notice("Watching screen %s", screen)

	scanner := bufio.NewScanner(resp.Body)
	var event string
	var data []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case strings.HasPrefix(line, ":"):
			// keepalive
		case line == "":
			if event != "" {
				w.event(event, strings.Join(data, "\n"))
			}
			event = ""
			data = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	w.notice("Disconnected")
	return nil
}

// eventWriter renders spectator events as text or JSON lines
type eventWriter struct {
	w    io.Writer
	json bool
	only []string
}

func (e *eventWriter) notice(format string, args ...any) {
	if e.json {
		return
	}
	_, _ = fmt.Fprintf(e.w, format+"\n", args...)
}

func (e *eventWriter) event(name, data string) {
	if len(e.only) > 0 && !slices.Contains(e.only, name) {
		return
	}
	now := time.Now()

	if e.json {
		raw := json.RawMessage(data)
		if !json.Valid(raw) {
			raw, _ = json.Marshal(data)
		}
		line, _ := json.Marshal(SSEEvent{Time: now, Event: name, Data: raw})
		_, _ = fmt.Fprintln(e.w, string(line))
		return
	}

	_, _ = fmt.Fprintf(e.w, "[%s] %s: %s\n", now.Format("15:04:05"), name, describeEvent(name, data))
}

type scoreLine struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// describeEvent summarises the payloads a spectator cares about. Anything
// unrecognised is shown raw, truncated.
func describeEvent(name, data string) string {
	var p struct {
		Count         int       `json:"count"`
		Scorer        int       `json:"scorer"`
		Scores        scoreLine `json:"scores"`
		ServingPlayer int       `json:"servingPlayer"`
		Winner        int       `json:"winner"`
		FinalScore    scoreLine `json:"finalScore"`
		Slot          int       `json:"slot"`
		Message       string    `json:"message"`
	}
	if err := json.Unmarshal([]byte(data), &p); err == nil {
		switch name {
		case "countdown":
			return fmt.Sprintf("%d", p.Count)
		case "scored":
			return fmt.Sprintf("P%d scores, %d-%d", p.Scorer, p.Scores.Player1, p.Scores.Player2)
		case "serve":
			return fmt.Sprintf("P%d serves", p.ServingPlayer)
		case "game-over":
			return fmt.Sprintf("P%d wins %d-%d", p.Winner, p.FinalScore.Player1, p.FinalScore.Player2)
		case "enable-blinking":
			return fmt.Sprintf("P%d disconnected", p.Slot)
		case "disable-blinking":
			return fmt.Sprintf("P%d reconnected", p.Slot)
		case "queue-reset", "display-disconnected":
			if p.Message != "" {
				return p.Message
			}
		}
	}

	display := strings.ReplaceAll(data, "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	return display
}
