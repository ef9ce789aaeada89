package match

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/scheduler"
	"github.com/mcoot/screenpong/internal/services/gameloop"
)

// tryPair proposes the next pairing for a screen. A waiting winner takes
// priority over a fresh pair from the queue.
func (m *Machine) tryPair(s *model.Screen) {
	for {
		if !s.DisplayConnected {
			if m.queues.Len(s.ID) >= 2 {
				m.logger.Debug("pairing deferred",
					slog.String("screen_id", string(s.ID)),
					slog.String("error", model.ErrDisplayNotConnected.Error()),
				)
			}
			return
		}
		if !s.State.CanPair() || s.Pending != nil {
			return
		}

		if s.Match != nil && s.Match.WaitingForChallenger() {
			winner := s.Match.WinnerID
			if !m.sessions.BoundTo(winner, s.ID) {
				m.logger.Warn("dropping stale winner",
					slog.String("screen_id", string(s.ID)),
					slog.String("lobby_id", string(winner)),
					slog.String("error", model.ErrStaleWinnerSession.Error()),
				)
				s.Match = nil
				s.State = model.ScreenStateIdle
				m.broadcastStatuses()
				continue
			}

			challenger, ok := m.queues.DequeueOldest(s.ID)
			if !ok {
				return
			}
			winnerSlot := s.Match.SlotOf(winner)
			p := &model.PendingMatch{
				ID:         m.newID(),
				ScreenID:   s.ID,
				IsRematch:  true,
				WinnerSlot: winnerSlot,
			}
			setPendingPlayer(p, winnerSlot, winner)
			setPendingPlayer(p, winnerSlot.Other(), challenger)
			m.propose(s, p)
			return
		}

		if s.Match != nil {
			return
		}

		first, second, ok := m.queues.DequeuePair(s.ID)
		if !ok {
			return
		}
		m.propose(s, &model.PendingMatch{
			ID:       m.newID(),
			ScreenID: s.ID,
			Player1:  first,
			Player2:  second,
		})
		return
	}
}

func setPendingPlayer(p *model.PendingMatch, slot model.Slot, id model.LobbyID) {
	switch slot {
	case model.Slot1:
		p.Player1 = id
	case model.Slot2:
		p.Player2 = id
	}
}

// propose opens the confirmation handshake for a pairing
func (m *Machine) propose(s *model.Screen, p *model.PendingMatch) {
	p.CreatedAt = m.now
	s.Pending = p
	s.State = model.ScreenStatePendingConfirmation

	for _, slot := range []model.Slot{model.Slot1, model.Slot2} {
		id := p.Player(slot)
		payload := model.MatchFoundPayload{
			MatchID:    p.ID,
			ScreenID:   s.ID,
			OpponentID: p.Player(slot.Other()),
			Slot:       slot,
		}
		if p.IsRematch && slot == p.WinnerSlot {
			channel, _ := m.sessions.ScreenChannelFor(id)
			m.toChannel(channel, model.EventMatchFound, payload)
			continue
		}
		m.toLobby(id, model.EventMatchFound, payload)
	}
	m.schedule(s, scheduler.KindConfirmation, m.cfg.ConfirmationTimeout)

	m.logger.Info("match proposed",
		slog.String("match_id", string(p.ID)),
		slog.String("screen_id", string(s.ID)),
		slog.String("player1_id", string(p.Player1)),
		slog.String("player2_id", string(p.Player2)),
		slog.Bool("rematch", p.IsRematch),
	)

	m.sendQueueUpdates(s.ID)
	m.broadcastStatuses()
}

func (m *Machine) confirmReady(e ConfirmReady) error {
	lobby := e.Lobby
	if lobby == "" {
		var ok bool
		lobby, ok = m.sessions.LobbyFor(e.Channel)
		if !ok {
			return fmt.Errorf("%w: confirm from unbound channel %s", model.ErrInvalidTransition, e.Channel)
		}
	}

	for _, id := range m.order {
		s := m.screens[id]
		if s.Pending == nil || s.State != model.ScreenStatePendingConfirmation {
			continue
		}
		slot := s.Pending.SlotOf(lobby)
		if slot == model.SlotNone {
			continue
		}
		s.Pending.Confirm(slot)
		if s.Pending.BothConfirmed() {
			m.promote(s)
		}
		return nil
	}
	return fmt.Errorf("%w: %s has no pending match", model.ErrInvalidTransition, lobby)
}

// promote turns a fully confirmed pairing into a live match and starts the
// countdown
func (m *Machine) promote(s *model.Screen) {
	p := s.Pending
	m.cancel(s, scheduler.KindConfirmation)
	s.Pending = nil

	if p.IsRematch && s.Match != nil {
		challengerSlot := p.WinnerSlot.Other()
		s.Match.ID = p.ID
		s.Match.SetPlayer(challengerSlot, p.Player(challengerSlot))
		s.Match.WinnerID = ""
		s.Match.StartedAt = m.now
	} else {
		s.Match = &model.Match{
			ID:        p.ID,
			ScreenID:  s.ID,
			Player1:   p.Player1,
			Player2:   p.Player2,
			StartedAt: m.now,
		}
	}
	s.Game = model.NewGameState(m.cfg)
	s.Replay = nil
	clear(s.Reconnecting)

	for _, slot := range []model.Slot{model.Slot1, model.Slot2} {
		m.toPlayer(s, s.Match.Player(slot), model.EventBothReady, model.BothReadyPayload{
			ScreenID: s.ID,
			Slot:     slot,
		})
	}

	s.State = model.ScreenStateCountdown
	s.Countdown = m.cfg.CountdownSteps
	m.announce(s, model.EventCountdownStart, model.CountdownPayload{Count: s.Countdown})
	m.schedule(s, scheduler.KindCountdown, m.cfg.CountdownInterval)

	m.logger.Info("match started",
		slog.String("match_id", string(s.Match.ID)),
		slog.String("screen_id", string(s.ID)),
		slog.String("player1_id", string(s.Match.Player1)),
		slog.String("player2_id", string(s.Match.Player2)),
	)
	m.broadcastStatuses()
}

// resolvePending tears down an unconfirmed pairing. Confirmed players go
// back to the front of the screen's queue; unconfirmed players are dropped.
// forced names a participant to treat as unconfirmed regardless.
func (m *Machine) resolvePending(s *model.Screen, reason string, forced model.LobbyID) {
	p := s.Pending
	if p == nil {
		return
	}
	m.cancel(s, scheduler.KindConfirmation)
	s.Pending = nil

	var requeue []model.LobbyID
	for _, slot := range []model.Slot{model.Slot1, model.Slot2} {
		id := p.Player(slot)
		confirmed := p.Confirmed(slot) && id != forced

		if p.IsRematch && slot == p.WinnerSlot {
			if !confirmed {
				// The winner loses their place on the screen
				s.Match = nil
				m.sessions.ClearLobbyBinding(id)
			}
			continue
		}

		if confirmed {
			requeue = append(requeue, id)
			m.toLobby(id, model.EventMatchCancelled, model.MatchCancelledPayload{Reason: reason})
			continue
		}
		m.queues.RemoveEverywhere(id)
	}

	// Requeue in reverse so slot order is preserved at the head
	for i := len(requeue) - 1; i >= 0; i-- {
		m.queues.EnqueueFront(s.ID, requeue[i])
	}

	if s.Match != nil {
		s.State = model.ScreenStateFinished
	} else {
		s.State = model.ScreenStateIdle
	}

	m.logger.Info("match cancelled",
		slog.String("match_id", string(p.ID)),
		slog.String("screen_id", string(s.ID)),
		slog.String("reason", reason),
		slog.Int("requeued", len(requeue)),
	)

	m.sendQueueUpdates(s.ID)
	m.broadcastStatuses()
	m.tryPair(s)
}

// startGame ends the countdown and serves the first ball
func (m *Machine) startGame(s *model.Screen) {
	s.State = model.ScreenStateActive
	gameloop.Serve(s.Game, m.cfg, m.random)
	m.announce(s, model.EventGameStart, nil)
	m.broadcastGame(s)
	m.schedule(s, scheduler.KindTick, m.cfg.TickInterval())
	m.broadcastStatuses()
}
