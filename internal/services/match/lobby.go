package match

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/screenpong/internal/model"
)

func (m *Machine) lobbyConnected(e LobbyConnected) error {
	m.sessions.Touch(e.Lobby, m.now)
	m.toLobby(e.Lobby, model.EventScreenStatuses, model.ScreenStatusesPayload{Screens: m.Statuses()})
	return nil
}

// lobbyDisconnected drops a player from every queue, resolves any handshake
// they were part of, and forgets them unless they still hold a match slot.
// A player still in a match is forgotten once their screen channel goes too.
func (m *Machine) lobbyDisconnected(e LobbyDisconnected) error {
	if screen, ok := m.queues.RemoveEverywhere(e.Lobby); ok {
		m.sendQueueUpdates(screen)
	}

	engaged := false
	for _, id := range m.order {
		s := m.screens[id]
		if s.Pending != nil && s.Pending.SlotOf(e.Lobby) != model.SlotNone {
			m.resolvePending(s, "opponent left", e.Lobby)
		}
		if s.Match != nil && s.Match.SlotOf(e.Lobby) != model.SlotNone {
			engaged = true
		}
	}
	if engaged {
		m.sessions.LobbyLeft(e.Lobby)
	} else {
		m.sessions.Remove(e.Lobby)
	}

	m.broadcastStatuses()
	return nil
}

func (m *Machine) joinQueue(e JoinQueue) error {
	if _, err := m.screen(e.Screen); err != nil {
		m.rejectJoin(e, err)
		return err
	}
	if m.engaged(e.Lobby) {
		m.rejectJoin(e, model.ErrAlreadyPlaying)
		return model.ErrAlreadyPlaying
	}
	if !m.queues.Enqueue(e.Screen, e.Lobby) {
		m.rejectJoin(e, model.ErrAlreadyQueued)
		return model.ErrAlreadyQueued
	}
	m.sessions.Touch(e.Lobby, m.now)

	m.logger.Info("player queued",
		slog.String("lobby_id", string(e.Lobby)),
		slog.String("screen_id", string(e.Screen)),
		slog.Int("queue_length", m.queues.Len(e.Screen)),
	)

	m.sendQueueUpdates(e.Screen)
	m.broadcastStatuses()
	m.tryPair(m.screens[e.Screen])
	return nil
}

func (m *Machine) rejectJoin(e JoinQueue, err error) {
	reason := err.Error()
	if errors.Is(err, model.ErrScreenNotFound) {
		reason = model.ErrScreenNotFound.Error()
	}
	m.toLobby(e.Lobby, model.EventQueueRejected, model.QueueRejectedPayload{
		ScreenID: e.Screen,
		Reason:   reason,
	})
}

func (m *Machine) leaveQueue(e LeaveQueue) error {
	screen, ok := m.queues.RemoveEverywhere(e.Lobby)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrNotQueued, e.Lobby)
	}
	m.sendQueueUpdates(screen)
	m.broadcastStatuses()
	return nil
}
