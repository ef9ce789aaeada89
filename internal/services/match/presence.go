package match

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/scheduler"
)

var allKinds = []scheduler.Kind{
	scheduler.KindConfirmation,
	scheduler.KindCountdown,
	scheduler.KindServe,
	scheduler.KindTick,
	scheduler.KindGrace1,
	scheduler.KindGrace2,
}

// displayConnect registers a screen's display. A second display on a screen
// that still has one registered resets that screen.
func (m *Machine) displayConnect(e DisplayConnect) error {
	s, err := m.screen(e.Screen)
	if err != nil {
		return err
	}
	if s.DisplayConnected && s.Display != e.Channel {
		m.resetScreen(s, "display reconnected")
	}
	s.DisplayConnected = true
	s.Display = e.Channel

	m.logger.Info("display connected", slog.String("screen_id", string(s.ID)))

	m.toChannel(e.Channel, model.EventGameConfig, model.NewGameConfigPayload(m.cfg, s.ID))
	if s.Game != nil {
		m.toChannel(e.Channel, model.EventUpdateGame, s.Game.Snapshot())
	}
	m.broadcastStatuses()
	m.tryPair(s)
	return nil
}

// playerReady binds a screen channel to a participant of the screen's
// match. A player returning within the grace period resumes the match.
func (m *Machine) playerReady(e PlayerReady) error {
	s, err := m.screen(e.Screen)
	if err != nil {
		return err
	}

	slot := model.SlotNone
	matchID := model.MatchID("")
	opponent := model.LobbyID("")
	switch {
	case s.Match != nil && s.Match.SlotOf(e.Lobby) != model.SlotNone:
		slot = s.Match.SlotOf(e.Lobby)
		matchID = s.Match.ID
		opponent = s.Match.Player(slot.Other())
	case s.Pending != nil && s.Pending.SlotOf(e.Lobby) != model.SlotNone:
		slot = s.Pending.SlotOf(e.Lobby)
		matchID = s.Pending.ID
		opponent = s.Pending.Player(slot.Other())
	default:
		m.toChannel(e.Channel, model.EventError, model.ErrorPayload{Message: "not a participant on this screen"})
		return fmt.Errorf("%w: %s is not a participant on %s", model.ErrInvalidTransition, e.Lobby, s.ID)
	}
	if e.Slot.Valid() && e.Slot != slot {
		m.logger.Debug("player ready with mismatched slot",
			slog.String("lobby_id", string(e.Lobby)),
			slog.Int("claimed_slot", int(e.Slot)),
			slog.Int("slot", int(slot)),
		)
	}

	m.sessions.Register(e.Lobby, e.Channel, s.ID, s.Name, slot, m.now)
	m.toChannel(e.Channel, model.EventGameConfig, model.NewGameConfigPayload(m.cfg, s.ID))
	if s.Game != nil {
		m.toChannel(e.Channel, model.EventUpdateGame, s.Game.Snapshot())
	}

	if s.Reconnecting[slot] {
		delete(s.Reconnecting, slot)
		m.cancel(s, graceKind(slot))
		m.broadcast(s, model.EventDisableBlinking, model.BlinkingPayload{Slot: slot})
		m.toChannel(e.Channel, model.EventMatchFound, model.MatchFoundPayload{
			MatchID:    matchID,
			ScreenID:   s.ID,
			OpponentID: opponent,
			Slot:       slot,
		})
		m.logger.Info("player reconnected",
			slog.String("screen_id", string(s.ID)),
			slog.String("lobby_id", string(e.Lobby)),
			slog.Int("slot", int(slot)),
		)
		return nil
	}

	if s.Match != nil && s.Match.WaitingForChallenger() && s.Match.WinnerID == e.Lobby {
		m.toChannel(e.Channel, model.EventWaitingForChallenger, model.NoticePayload{
			ScreenID: s.ID,
			Message:  "waiting for a challenger",
		})
	}
	return nil
}

// screenChannelDisconnected works out whose channel closed. A player in a
// live match gets a grace period; a waiting winner gives up the screen.
func (m *Machine) screenChannelDisconnected(e ScreenChannelDisconnected) error {
	s, err := m.screen(e.Screen)
	if err != nil {
		return err
	}
	if s.DisplayConnected && s.Display == e.Channel {
		m.displayDisconnected(s)
		return nil
	}

	lobby, ok := m.sessions.ClearScreenBinding(e.Channel)
	if !ok {
		return nil
	}

	if s.Match == nil {
		return nil
	}
	slot := s.Match.SlotOf(lobby)
	if slot == model.SlotNone {
		return nil
	}

	switch {
	case s.State.Live() && s.Match.Full():
		s.Reconnecting[slot] = true
		m.broadcast(s, model.EventEnableBlinking, model.BlinkingPayload{Slot: slot})
		m.schedule(s, graceKind(slot), m.cfg.ReconnectGrace)
		m.logger.Info("player disconnected mid-match",
			slog.String("screen_id", string(s.ID)),
			slog.String("lobby_id", string(lobby)),
			slog.Int("slot", int(slot)),
		)
	case s.Match.WinnerID == lobby:
		m.logger.Info("waiting winner left",
			slog.String("screen_id", string(s.ID)),
			slog.String("lobby_id", string(lobby)),
		)
		if s.Pending != nil {
			m.resolvePending(s, "opponent left", lobby)
			return nil
		}
		s.Match = nil
		s.State = model.ScreenStateIdle
		m.broadcastStatuses()
		m.tryPair(s)
	}
	return nil
}

// graceExpired awards the match to the opponent of a player who did not
// come back in time
func (m *Machine) graceExpired(s *model.Screen, slot model.Slot) error {
	if !s.State.Live() || s.Match == nil || !s.Match.Full() || !s.Reconnecting[slot] {
		return fmt.Errorf("%w: grace expiry for slot %d on %s", model.ErrInvalidTransition, slot, s.State)
	}
	loser := s.Match.Player(slot)
	delete(s.Reconnecting, slot)
	m.broadcast(s, model.EventDisableBlinking, model.BlinkingPayload{Slot: slot})

	m.logger.Info("player forfeited",
		slog.String("screen_id", string(s.ID)),
		slog.String("lobby_id", string(loser)),
		slog.String("reason", model.ErrForfeitDisconnect.Error()),
	)

	m.terminate(s, slot.Other(), true)
	m.sessions.Remove(loser)
	if screen, ok := m.queues.RemoveEverywhere(loser); ok {
		m.sendQueueUpdates(screen)
	}
	return nil
}

// displayDisconnected abandons whatever the screen was running and puts its
// participants back at the head of the queue
func (m *Machine) displayDisconnected(s *model.Screen) {
	participants := m.participants(s)
	m.clearScreen(s)
	s.DisplayConnected = false
	s.Display = ""

	var requeue []model.LobbyID
	for _, id := range participants {
		m.sessions.ClearLobbyBinding(id)
		if _, err := m.sessions.Get(id); err != nil {
			continue
		}
		requeue = append(requeue, id)
		m.toLobby(id, model.EventDisplayDisconnected, model.NoticePayload{
			ScreenID: s.ID,
			Message:  "screen display disconnected",
		})
	}
	for i := len(requeue) - 1; i >= 0; i-- {
		m.queues.EnqueueFront(s.ID, requeue[i])
	}

	m.logger.Warn("display disconnected",
		slog.String("screen_id", string(s.ID)),
		slog.Int("requeued", len(requeue)),
	)

	m.sendQueueUpdates(s.ID)
	m.broadcastStatuses()
}

func (m *Machine) reset(e Reset) error {
	s, err := m.screen(e.Screen)
	if err != nil {
		return err
	}
	m.resetScreen(s, "screen reset")
	return nil
}

// resetScreen abandons the screen's match and empties its queue
func (m *Machine) resetScreen(s *model.Screen, reason string) {
	participants := m.participants(s)
	m.clearScreen(s)

	for _, id := range participants {
		m.sessions.ClearLobbyBinding(id)
		m.toLobby(id, model.EventMatchCancelled, model.MatchCancelledPayload{Reason: reason})
	}
	queued := m.queues.Clear(s.ID)

	notice := model.NoticePayload{ScreenID: s.ID, Message: reason}
	m.emit(BroadcastLobby{Message: model.NewMessage(model.EventQueueReset, notice)})
	m.broadcast(s, model.EventQueueReset, notice)

	m.logger.Info("screen reset",
		slog.String("screen_id", string(s.ID)),
		slog.String("reason", reason),
		slog.Int("dropped_queue", len(queued)),
	)
	m.broadcastStatuses()
}

// clearScreen cancels every timer and drops all match state
func (m *Machine) clearScreen(s *model.Screen) {
	m.cancel(s, allKinds...)
	s.Match = nil
	s.Pending = nil
	s.Game = nil
	s.Countdown = 0
	clear(s.Reconnecting)
	s.State = model.ScreenStateIdle
}
