package match

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/scheduler"
	"github.com/mcoot/screenpong/internal/services/gameloop"
	"github.com/mcoot/screenpong/internal/services/physics"
)

func (m *Machine) timerFired(e TimerFired) error {
	s, err := m.screen(e.Screen)
	if err != nil {
		return err
	}
	switch e.Kind {
	case scheduler.KindConfirmation:
		if s.Pending == nil || s.State != model.ScreenStatePendingConfirmation {
			return fmt.Errorf("%w: confirmation deadline on %s", model.ErrInvalidTransition, s.State)
		}
		m.resolvePending(s, model.ErrConfirmationTimeout.Error(), "")
		return nil
	case scheduler.KindCountdown:
		return m.countdownStep(s)
	case scheduler.KindTick:
		return m.tick(s)
	case scheduler.KindServe:
		return m.serve(s)
	case scheduler.KindGrace1:
		return m.graceExpired(s, model.Slot1)
	case scheduler.KindGrace2:
		return m.graceExpired(s, model.Slot2)
	default:
		return fmt.Errorf("%w: unknown timer %s", model.ErrInvalidTransition, e.Kind)
	}
}

func (m *Machine) countdownStep(s *model.Screen) error {
	if s.State != model.ScreenStateCountdown || s.Match == nil || s.Game == nil {
		return fmt.Errorf("%w: countdown on %s", model.ErrInvalidTransition, s.State)
	}
	s.Countdown--
	if s.Countdown > 0 {
		m.announce(s, model.EventCountdown, model.CountdownPayload{Count: s.Countdown})
		m.schedule(s, scheduler.KindCountdown, m.cfg.CountdownInterval)
		return nil
	}
	m.startGame(s)
	return nil
}

// tick advances the simulation one step and reschedules itself. The
// simulation holds still while a player is reconnecting.
func (m *Machine) tick(s *model.Screen) error {
	if s.State != model.ScreenStateActive || s.Match == nil || s.Game == nil {
		return fmt.Errorf("%w: tick on %s", model.ErrInvalidTransition, s.State)
	}

	if !s.Frozen() {
		wasActive := s.Game.Active
		out := gameloop.Step(s.Game, m.cfg)
		if wasActive {
			s.Replay = gameloop.Record(s.Replay, s.Game, m.cfg.ReplayFrames)
		}

		if out.Winner != model.SlotNone {
			m.terminate(s, out.Winner, false)
			return nil
		}
		if out.Scorer != model.SlotNone {
			m.broadcast(s, model.EventScored, model.ScoredPayload{
				Scorer: out.Scorer,
				Scores: s.Game.Scores(),
			})
			m.schedule(s, scheduler.KindServe, m.cfg.ServeDelay)
		}
	}

	m.broadcastGame(s)
	m.schedule(s, scheduler.KindTick, m.cfg.TickInterval())
	return nil
}

func (m *Machine) serve(s *model.Screen) error {
	if s.State != model.ScreenStateActive || s.Game == nil || s.Game.Active {
		return fmt.Errorf("%w: serve on %s", model.ErrInvalidTransition, s.State)
	}
	gameloop.Serve(s.Game, m.cfg, m.random)
	m.broadcast(s, model.EventServe, model.ServePayload{ServingPlayer: s.Game.ServingPlayer})
	m.broadcastGame(s)
	return nil
}

// terminate ends a live match. The winner keeps their slot and waits for a
// challenger; the loser returns to the lobby.
func (m *Machine) terminate(s *model.Screen, winnerSlot model.Slot, forfeit bool) {
	match := s.Match
	game := s.Game
	m.cancel(s, scheduler.KindTick, scheduler.KindServe, scheduler.KindCountdown,
		scheduler.KindGrace1, scheduler.KindGrace2)
	game.Active = false

	loserSlot := winnerSlot.Other()
	winner := match.Player(winnerSlot)
	loser := match.Player(loserSlot)
	scores := game.Scores()

	m.toPlayer(s, winner, model.EventGameEnd, model.GameEndPayload{Won: true, FinalScore: scores, Forfeit: forfeit})
	m.toPlayer(s, loser, model.EventGameEnd, model.GameEndPayload{Won: false, FinalScore: scores, Forfeit: forfeit})
	m.broadcast(s, model.EventGameOver, model.GameOverPayload{Winner: winnerSlot, FinalScore: scores})
	m.broadcastGame(s)

	m.emit(RecordScore{Entry: model.ScoreEntry{
		Screen:     s.ID,
		Winner:     winner,
		Points:     scores.Player1 + scores.Player2,
		FinalScore: scores,
		Forfeit:    forfeit,
		Timestamp:  m.now,
	}})

	m.sessions.ClearLobbyBinding(loser)
	match.WinnerID = winner
	match.SetPlayer(loserSlot, "")
	clear(s.Reconnecting)
	s.State = model.ScreenStateFinished

	m.logger.Info("match finished",
		slog.String("match_id", string(match.ID)),
		slog.String("screen_id", string(s.ID)),
		slog.String("winner_id", string(winner)),
		slog.String("loser_id", string(loser)),
		slog.Int("player1_score", scores.Player1),
		slog.Int("player2_score", scores.Player2),
		slog.Bool("forfeit", forfeit),
	)

	m.toPlayer(s, winner, model.EventWaitingForChallenger, model.NoticePayload{
		ScreenID: s.ID,
		Message:  "waiting for a challenger",
	})
	m.broadcastStatuses()
	m.tryPair(s)
}

// paddle resolves the paddle controlled by a bound screen channel
func (m *Machine) paddle(screen model.ScreenID, channel model.ChannelID) (*model.Paddle, error) {
	s, err := m.screen(screen)
	if err != nil {
		return nil, err
	}
	lobby, ok := m.sessions.LobbyFor(channel)
	if !ok || !m.sessions.BoundTo(lobby, s.ID) {
		return nil, fmt.Errorf("%w: paddle input from unbound channel %s", model.ErrInvalidTransition, channel)
	}
	if s.Match == nil || s.Game == nil {
		return nil, fmt.Errorf("%w: paddle input with no game on %s", model.ErrInvalidTransition, s.ID)
	}
	slot := s.Match.SlotOf(lobby)
	if slot == model.SlotNone {
		return nil, fmt.Errorf("%w: %s is not playing on %s", model.ErrInvalidTransition, lobby, s.ID)
	}
	return s.Game.Paddle(slot), nil
}

func (m *Machine) paddlePosition(e PaddlePosition) error {
	p, err := m.paddle(e.Screen, e.Channel)
	if err != nil {
		return err
	}
	physics.SetPaddlePosition(p, m.cfg, e.Position)
	return nil
}

func (m *Machine) paddleMove(e PaddleMove) error {
	p, err := m.paddle(e.Screen, e.Channel)
	if err != nil {
		return err
	}
	physics.MovePaddle(p, m.cfg, e.Direction)
	return nil
}
