package match

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/screenpong/internal/dependencies/clock"
	"github.com/mcoot/screenpong/internal/dependencies/random"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/scheduler"
)

// persistTimeout bounds a single score write
const persistTimeout = 5 * time.Second

// Emitter delivers outbound messages. Implementations must not block.
type Emitter interface {
	SendToLobby(id model.LobbyID, msg model.Message)
	SendToChannel(id model.ChannelID, msg model.Message)
	BroadcastScreen(id model.ScreenID, msg model.Message)
	BroadcastLobby(msg model.Message)
}

// ScoreSink persists finished matches
type ScoreSink interface {
	SaveScore(ctx context.Context, entry *model.ScoreEntry) error
}

// Coordinator serialises events into the Machine and carries out the
// effects it returns
type Coordinator struct {
	mu         sync.Mutex
	machine    *Machine
	schedulers map[model.ScreenID]*scheduler.Scheduler
	emitter    Emitter
	scores     ScoreSink
	clock      clock.Clock
	logger     *slog.Logger
	closed     bool

	persisting sync.WaitGroup
}

// NewCoordinator creates a Coordinator with one scheduler per screen
func NewCoordinator(
	cfg model.GameConfig,
	screens []model.ScreenID,
	emitter Emitter,
	scores ScoreSink,
	clk clock.Clock,
	rnd random.Random,
	newID IDFunc,
	logger *slog.Logger,
) *Coordinator {
	c := &Coordinator{
		machine:    NewMachine(cfg, screens, rnd, newID, logger),
		schedulers: make(map[model.ScreenID]*scheduler.Scheduler, len(screens)),
		emitter:    emitter,
		scores:     scores,
		clock:      clk,
		logger:     logger,
	}
	for _, id := range c.machine.Screens() {
		screen := id
		c.schedulers[screen] = scheduler.New(clk, func(kind scheduler.Kind, seq uint64) {
			c.onTimer(screen, kind, seq)
		})
	}
	return c
}

// Handle applies one event. It never panics; failures are logged.
func (c *Coordinator) Handle(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.apply(ev)
}

func (c *Coordinator) onTimer(screen model.ScreenID, kind scheduler.Kind, seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	// A timer cancelled after the clock released it cannot be claimed
	if !c.schedulers[screen].Claim(kind, seq) {
		return
	}
	c.apply(TimerFired{Screen: screen, Kind: kind})
}

// apply must be called with c.mu held
func (c *Coordinator) apply(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic handling event",
				slog.Any("panic", r),
				slog.String("event", eventName(ev)),
			)
		}
	}()
	c.execute(c.machine.Apply(ev, c.clock.Now()))
}

func (c *Coordinator) execute(effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case Send:
			if e.To.Lobby != "" {
				c.emitter.SendToLobby(e.To.Lobby, e.Message)
			} else {
				c.emitter.SendToChannel(e.To.Channel, e.Message)
			}
		case BroadcastScreen:
			c.emitter.BroadcastScreen(e.Screen, e.Message)
		case BroadcastLobby:
			c.emitter.BroadcastLobby(e.Message)
		case Schedule:
			if s, ok := c.schedulers[e.Screen]; ok {
				s.Schedule(e.Kind, e.Delay)
			}
		case Cancel:
			if s, ok := c.schedulers[e.Screen]; ok {
				s.Cancel(e.Kind)
			}
		case RecordScore:
			c.record(e.Entry)
		}
	}
}

// record persists a score in the background. Failures are logged only.
func (c *Coordinator) record(entry model.ScoreEntry) {
	c.persisting.Add(1)
	go func() {
		defer c.persisting.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.scores.SaveScore(ctx, &entry); err != nil {
			c.logger.Error("failed to record score",
				slog.String("screen_id", string(entry.Screen)),
				slog.String("winner_id", string(entry.Winner)),
				slog.String("error", model.ErrPersistenceFailure.Error()),
				slog.String("cause", err.Error()),
			)
		}
	}()
}

// Shutdown stops every timer, refuses further events and waits for pending
// score writes
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	for _, s := range c.schedulers {
		s.CancelAll()
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.persisting.Wait()
		close(done)
	}()
	select {
	case <-done:
		c.logger.Info("match coordinator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Screens returns the configured screen IDs
func (c *Coordinator) Screens() []model.ScreenID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Screens()
}

// HasScreen reports whether a screen is configured
func (c *Coordinator) HasScreen(id model.ScreenID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.HasScreen(id)
}

// Statuses summarises every screen
func (c *Coordinator) Statuses() []model.ScreenStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Statuses()
}

// Status summarises one screen
func (c *Coordinator) Status(id model.ScreenID) (model.ScreenStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Status(id)
}

// Snapshot returns a copy of a screen's game, or nil when none exists
func (c *Coordinator) Snapshot(id model.ScreenID) (*model.GameState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Snapshot(id)
}

// Replay returns the recorded frames of a screen's current or last match
func (c *Coordinator) Replay(id model.ScreenID) ([]model.ReplayFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Replay(id)
}

// QueuePosition returns a player's position on a screen's queue
func (c *Coordinator) QueuePosition(screen model.ScreenID, id model.LobbyID) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.QueuePosition(screen, id)
}

// Session returns a player's session
func (c *Coordinator) Session(id model.LobbyID) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Session(id)
}

func eventName(ev Event) string {
	return fmt.Sprintf("%T", ev)
}
