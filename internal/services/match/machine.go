// Package match runs the per-screen match lifecycle: queueing, pairing, the
// confirmation handshake, the game loop and the winner-stays bracket.
//
// Machine is a pure transition function over the screens it owns: Apply
// takes one event and returns the effects to carry out. Coordinator wraps
// it with a transport, timers and a score sink.
package match

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/screenpong/internal/dependencies/random"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/scheduler"
	"github.com/mcoot/screenpong/internal/services/queue"
	"github.com/mcoot/screenpong/internal/services/session"
)

// IDFunc generates match identifiers
type IDFunc func() model.MatchID

// Machine holds every screen, queue and session. It is not safe for
// concurrent use.
type Machine struct {
	cfg      model.GameConfig
	screens  map[model.ScreenID]*model.Screen
	order    []model.ScreenID
	queues   *queue.Queues
	sessions *session.Registry
	random   random.Random
	newID    IDFunc
	logger   *slog.Logger

	now     time.Time
	effects []Effect
}

// NewMachine creates a Machine for the given screens, all idle
func NewMachine(
	cfg model.GameConfig,
	screens []model.ScreenID,
	rnd random.Random,
	newID IDFunc,
	logger *slog.Logger,
) *Machine {
	m := &Machine{
		cfg:      cfg,
		screens:  make(map[model.ScreenID]*model.Screen, len(screens)),
		queues:   queue.New(screens...),
		sessions: session.New(),
		random:   rnd,
		newID:    newID,
		logger:   logger,
	}
	for _, id := range screens {
		if _, dup := m.screens[id]; dup {
			continue
		}
		m.screens[id] = model.NewScreen(id)
		m.order = append(m.order, id)
	}
	return m
}

// Apply runs one event against the current state and returns the effects
// it produced. Events that no longer match the current state are logged
// and ignored.
func (m *Machine) Apply(ev Event, now time.Time) []Effect {
	m.now = now
	m.effects = nil

	if err := m.dispatch(ev); err != nil {
		m.logRejected(ev, err)
	}

	effects := m.effects
	m.effects = nil
	return effects
}

func (m *Machine) dispatch(ev Event) error {
	switch e := ev.(type) {
	case LobbyConnected:
		return m.lobbyConnected(e)
	case LobbyDisconnected:
		return m.lobbyDisconnected(e)
	case JoinQueue:
		return m.joinQueue(e)
	case LeaveQueue:
		return m.leaveQueue(e)
	case ConfirmReady:
		return m.confirmReady(e)
	case DisplayConnect:
		return m.displayConnect(e)
	case PlayerReady:
		return m.playerReady(e)
	case PaddlePosition:
		return m.paddlePosition(e)
	case PaddleMove:
		return m.paddleMove(e)
	case ScreenChannelDisconnected:
		return m.screenChannelDisconnected(e)
	case TimerFired:
		return m.timerFired(e)
	case Reset:
		return m.reset(e)
	default:
		return fmt.Errorf("%w: unknown event %T", model.ErrInvalidTransition, ev)
	}
}

func (m *Machine) logRejected(ev Event, err error) {
	attrs := []any{
		slog.String("event", eventName(ev)),
		slog.String("error", err.Error()),
	}
	if errors.Is(err, model.ErrInvalidTransition) {
		m.logger.Debug("event ignored", attrs...)
		return
	}
	m.logger.Warn("event rejected", attrs...)
}

func (m *Machine) screen(id model.ScreenID) (*model.Screen, error) {
	s, ok := m.screens[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrScreenNotFound, id)
	}
	return s, nil
}

// Effect helpers

func (m *Machine) emit(e Effect) {
	m.effects = append(m.effects, e)
}

func (m *Machine) toLobby(id model.LobbyID, t model.EventType, payload any) {
	if id == "" {
		return
	}
	m.emit(Send{To: Recipient{Lobby: id}, Message: model.NewMessage(t, payload)})
}

func (m *Machine) toChannel(id model.ChannelID, t model.EventType, payload any) {
	if id == "" {
		return
	}
	m.emit(Send{To: Recipient{Channel: id}, Message: model.NewMessage(t, payload)})
}

// toPlayer reaches a participant on their screen channel when they are bound
// to this screen, and on their lobby connection otherwise
func (m *Machine) toPlayer(screen *model.Screen, id model.LobbyID, t model.EventType, payload any) {
	if m.sessions.BoundTo(id, screen.ID) {
		channel, _ := m.sessions.ScreenChannelFor(id)
		m.toChannel(channel, t, payload)
		return
	}
	m.toLobby(id, t, payload)
}

func (m *Machine) broadcast(screen *model.Screen, t model.EventType, payload any) {
	m.emit(BroadcastScreen{Screen: screen.ID, Message: model.NewMessage(t, payload)})
}

// announce broadcasts to the screen and also reaches participants that have
// not yet opened a screen channel
func (m *Machine) announce(screen *model.Screen, t model.EventType, payload any) {
	m.broadcast(screen, t, payload)
	for _, id := range m.participants(screen) {
		if !m.sessions.BoundTo(id, screen.ID) {
			m.toLobby(id, t, payload)
		}
	}
}

func (m *Machine) broadcastGame(screen *model.Screen) {
	if screen.Game == nil {
		return
	}
	m.broadcast(screen, model.EventUpdateGame, screen.Game.Snapshot())
}

func (m *Machine) broadcastStatuses() {
	m.emit(BroadcastLobby{Message: model.NewMessage(
		model.EventScreenStatuses,
		model.ScreenStatusesPayload{Screens: m.Statuses()},
	)})
}

func (m *Machine) sendQueueUpdates(screen model.ScreenID) {
	players := m.queues.Players(screen)
	for i, id := range players {
		m.toLobby(id, model.EventQueueUpdate, model.QueueUpdatePayload{
			Position:    i + 1,
			QueueLength: len(players),
			ScreenID:    screen,
		})
	}
}

func (m *Machine) schedule(screen *model.Screen, kind scheduler.Kind, delay time.Duration) {
	m.emit(Schedule{Screen: screen.ID, Kind: kind, Delay: delay})
}

func (m *Machine) cancel(screen *model.Screen, kinds ...scheduler.Kind) {
	for _, kind := range kinds {
		m.emit(Cancel{Screen: screen.ID, Kind: kind})
	}
}

// participants returns the players of a screen's match or pending match
func (m *Machine) participants(screen *model.Screen) []model.LobbyID {
	var ids []model.LobbyID
	add := func(id model.LobbyID) {
		if id == "" {
			return
		}
		for _, existing := range ids {
			if existing == id {
				return
			}
		}
		ids = append(ids, id)
	}
	if screen.Match != nil {
		add(screen.Match.Player1)
		add(screen.Match.Player2)
	}
	if screen.Pending != nil {
		add(screen.Pending.Player1)
		add(screen.Pending.Player2)
	}
	return ids
}

// engaged reports whether a player holds a slot in any match or pending
// match
func (m *Machine) engaged(id model.LobbyID) bool {
	for _, screenID := range m.order {
		s := m.screens[screenID]
		if s.Match != nil && s.Match.SlotOf(id) != model.SlotNone {
			return true
		}
		if s.Pending != nil && s.Pending.SlotOf(id) != model.SlotNone {
			return true
		}
	}
	return false
}

func graceKind(slot model.Slot) scheduler.Kind {
	if slot == model.Slot2 {
		return scheduler.KindGrace2
	}
	return scheduler.KindGrace1
}

// Queries

// Screens returns the screen IDs in configuration order
func (m *Machine) Screens() []model.ScreenID {
	return append([]model.ScreenID(nil), m.order...)
}

// HasScreen reports whether a screen is configured
func (m *Machine) HasScreen(id model.ScreenID) bool {
	_, ok := m.screens[id]
	return ok
}

// Statuses summarises every screen in configuration order
func (m *Machine) Statuses() []model.ScreenStatus {
	statuses := make([]model.ScreenStatus, 0, len(m.order))
	for _, id := range m.order {
		statuses = append(statuses, m.status(m.screens[id]))
	}
	return statuses
}

// Status summarises a single screen
func (m *Machine) Status(id model.ScreenID) (model.ScreenStatus, error) {
	s, err := m.screen(id)
	if err != nil {
		return model.ScreenStatus{}, err
	}
	return m.status(s), nil
}

// Snapshot returns a copy of a screen's game state, or nil when no game
// exists
func (m *Machine) Snapshot(id model.ScreenID) (*model.GameState, error) {
	s, err := m.screen(id)
	if err != nil {
		return nil, err
	}
	if s.Game == nil {
		return nil, nil
	}
	snap := s.Game.Snapshot()
	return &snap, nil
}

// Replay returns a copy of the recorded frames of a screen's current or
// last match
func (m *Machine) Replay(id model.ScreenID) ([]model.ReplayFrame, error) {
	s, err := m.screen(id)
	if err != nil {
		return nil, err
	}
	return append([]model.ReplayFrame(nil), s.Replay...), nil
}

// QueuePosition returns a player's 1-indexed position on a screen's queue
func (m *Machine) QueuePosition(screen model.ScreenID, id model.LobbyID) (int, bool) {
	return m.queues.PositionOf(screen, id)
}

// Session returns a player's session
func (m *Machine) Session(id model.LobbyID) (model.Session, error) {
	return m.sessions.Get(id)
}

func (m *Machine) status(s *model.Screen) model.ScreenStatus {
	st := model.ScreenStatus{
		ID:               s.ID,
		State:            s.State,
		DisplayConnected: s.DisplayConnected,
		QueueLength:      m.queues.Len(s.ID),
	}
	switch {
	case s.Match != nil:
		st.Player1ID = s.Match.Player1
		st.Player2ID = s.Match.Player2
		st.WaitingForChallenger = s.Match.WaitingForChallenger()
	case s.Pending != nil:
		st.Player1ID = s.Pending.Player1
		st.Player2ID = s.Pending.Player2
	}
	if s.Game != nil {
		st.GameActive = s.Game.Active
		score := s.Game.Scores()
		st.Score = &score
	}
	return st
}
