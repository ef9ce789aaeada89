package queue

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/screenpong/internal/model"
)

const (
	screenA model.ScreenID = "display_1"
	screenB model.ScreenID = "display_2"
)

type QueueSuite struct {
	suite.Suite
	queues *Queues
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, new(QueueSuite))
}

func (s *QueueSuite) SetupTest() {
	s.queues = New(screenA, screenB)
}

func (s *QueueSuite) TestEnqueueAppendsInOrder() {
	s.True(s.queues.Enqueue(screenA, "p1"))
	s.True(s.queues.Enqueue(screenA, "p2"))
	s.True(s.queues.Enqueue(screenA, "p3"))

	s.Equal([]model.LobbyID{"p1", "p2", "p3"}, s.queues.Players(screenA))
	pos, ok := s.queues.PositionOf(screenA, "p3")
	s.True(ok)
	s.Equal(3, pos)
}

func (s *QueueSuite) TestEnqueueRejectsPlayerQueuedOnAnotherScreen() {
	s.True(s.queues.Enqueue(screenA, "p1"))

	s.False(s.queues.Enqueue(screenB, "p1"))
	s.False(s.queues.Enqueue(screenA, "p1"))

	s.Equal(1, s.queues.Len(screenA))
	s.Zero(s.queues.Len(screenB))
	screen, ok := s.queues.ScreenOf("p1")
	s.True(ok)
	s.Equal(screenA, screen)
}

func (s *QueueSuite) TestDequeueOldest() {
	_, ok := s.queues.DequeueOldest(screenA)
	s.False(ok)

	s.queues.Enqueue(screenA, "p1")
	s.queues.Enqueue(screenA, "p2")

	head, ok := s.queues.DequeueOldest(screenA)
	s.True(ok)
	s.Equal(model.LobbyID("p1"), head)

	_, queued := s.queues.ScreenOf("p1")
	s.False(queued)
	s.True(s.queues.Enqueue(screenB, "p1"), "dequeued player may queue again")
}

func (s *QueueSuite) TestDequeuePairNeedsTwoPlayers() {
	s.queues.Enqueue(screenA, "p1")

	_, _, ok := s.queues.DequeuePair(screenA)
	s.False(ok)
	s.Equal(1, s.queues.Len(screenA), "a lone player is left in place")

	s.queues.Enqueue(screenA, "p2")
	s.queues.Enqueue(screenA, "p3")

	first, second, ok := s.queues.DequeuePair(screenA)
	s.True(ok)
	s.Equal(model.LobbyID("p1"), first)
	s.Equal(model.LobbyID("p2"), second)
	s.Equal([]model.LobbyID{"p3"}, s.queues.Players(screenA))
}

func (s *QueueSuite) TestEnqueueFront() {
	s.queues.Enqueue(screenA, "p1")
	s.queues.Enqueue(screenA, "p2")
	s.queues.Enqueue(screenB, "p3")

	s.queues.EnqueueFront(screenA, "p3")

	pos, ok := s.queues.PositionOf(screenA, "p3")
	s.True(ok)
	s.Equal(1, pos)
	s.Zero(s.queues.Len(screenB), "player is moved, not duplicated")
	s.Equal([]model.LobbyID{"p3", "p1", "p2"}, s.queues.Players(screenA))
}

func (s *QueueSuite) TestPositionOfMissingPlayer() {
	s.queues.Enqueue(screenA, "p1")

	_, ok := s.queues.PositionOf(screenB, "p1")
	s.False(ok)
	_, ok = s.queues.PositionOf(screenA, "nobody")
	s.False(ok)
	_, ok = s.queues.PositionOf("unknown", "p1")
	s.False(ok)
}

func (s *QueueSuite) TestRemoveEverywhere() {
	s.queues.Enqueue(screenA, "p1")
	s.queues.Enqueue(screenA, "p2")

	screen, ok := s.queues.RemoveEverywhere("p1")
	s.True(ok)
	s.Equal(screenA, screen)
	s.Equal([]model.LobbyID{"p2"}, s.queues.Players(screenA))

	_, ok = s.queues.RemoveEverywhere("p1")
	s.False(ok, "removing twice is a no-op")
}

func (s *QueueSuite) TestClear() {
	s.queues.Enqueue(screenA, "p1")
	s.queues.Enqueue(screenA, "p2")

	cleared := s.queues.Clear(screenA)

	s.Equal([]model.LobbyID{"p1", "p2"}, cleared)
	s.Zero(s.queues.Len(screenA))
	s.True(s.queues.Enqueue(screenB, "p1"))
}

func (s *QueueSuite) TestPlayersReturnsCopy() {
	s.queues.Enqueue(screenA, "p1")

	players := s.queues.Players(screenA)
	players[0] = "mutated"

	s.Equal([]model.LobbyID{"p1"}, s.queues.Players(screenA))
}
