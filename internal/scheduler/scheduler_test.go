package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/screenpong/internal/dependencies/mocks"
)

type firing struct {
	kind Kind
	seq  uint64
}

type SchedulerSuite struct {
	suite.Suite
	clock     *mocks.MockClock
	scheduler *Scheduler
	fired     []firing
	claimed   []Kind
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.fired = nil
	s.claimed = nil
	s.scheduler = New(s.clock, func(kind Kind, seq uint64) {
		s.fired = append(s.fired, firing{kind: kind, seq: seq})
		if s.scheduler.Claim(kind, seq) {
			s.claimed = append(s.claimed, kind)
		}
	})
}

func (s *SchedulerSuite) TestScheduledTimerFiresOnce() {
	s.scheduler.Schedule(KindServe, 2*time.Second)
	s.True(s.scheduler.Pending(KindServe))

	s.clock.Advance(time.Second)
	s.Empty(s.claimed)

	s.clock.Advance(time.Second)
	s.Equal([]Kind{KindServe}, s.claimed)
	s.False(s.scheduler.Pending(KindServe))

	s.clock.Advance(10 * time.Second)
	s.Len(s.claimed, 1)
}

func (s *SchedulerSuite) TestCancelPreventsFiring() {
	s.scheduler.Schedule(KindConfirmation, 10*time.Second)
	s.scheduler.Cancel(KindConfirmation)

	s.clock.Advance(time.Minute)

	s.Empty(s.fired)
	s.Empty(s.claimed)
	s.Zero(s.clock.PendingTimers())
}

func (s *SchedulerSuite) TestCancelIsIdempotent() {
	s.scheduler.Cancel(KindTick)

	s.scheduler.Schedule(KindTick, time.Second)
	s.clock.Advance(time.Second)
	s.scheduler.Cancel(KindTick)
	s.scheduler.Cancel(KindTick)

	s.Equal([]Kind{KindTick}, s.claimed)
}

func (s *SchedulerSuite) TestScheduleReplacesSameKind() {
	first := s.scheduler.Schedule(KindGrace1, time.Second)
	second := s.scheduler.Schedule(KindGrace1, 3*time.Second)
	s.NotEqual(first, second)

	s.clock.Advance(2 * time.Second)
	s.Empty(s.claimed, "replaced timer must not fire")

	s.clock.Advance(time.Second)
	s.Equal([]Kind{KindGrace1}, s.claimed)
}

func (s *SchedulerSuite) TestStaleSequenceCannotBeClaimed() {
	first := s.scheduler.Schedule(KindCountdown, time.Second)
	s.scheduler.Schedule(KindCountdown, time.Second)

	s.False(s.scheduler.Claim(KindCountdown, first))
	s.True(s.scheduler.Pending(KindCountdown))
}

func (s *SchedulerSuite) TestKindsAreIndependent() {
	s.scheduler.Schedule(KindGrace1, time.Second)
	s.scheduler.Schedule(KindGrace2, 2*time.Second)

	s.scheduler.Cancel(KindGrace1)
	s.clock.Advance(2 * time.Second)

	s.Equal([]Kind{KindGrace2}, s.claimed)
}

func (s *SchedulerSuite) TestCancelAll() {
	s.scheduler.Schedule(KindServe, time.Second)
	s.scheduler.Schedule(KindTick, time.Second)
	s.scheduler.Schedule(KindGrace2, time.Second)

	s.scheduler.CancelAll()
	s.clock.Advance(time.Minute)

	s.Empty(s.claimed)
	s.False(s.scheduler.Pending(KindServe))
	s.False(s.scheduler.Pending(KindTick))
}

func (s *SchedulerSuite) TestRescheduleFromCallback() {
	ticks := 0
	var sched *Scheduler
	sched = New(s.clock, func(kind Kind, seq uint64) {
		if !sched.Claim(kind, seq) {
			return
		}
		ticks++
		if ticks < 3 {
			sched.Schedule(KindTick, 100*time.Millisecond)
		}
	})

	sched.Schedule(KindTick, 100*time.Millisecond)
	s.clock.Advance(time.Second)

	s.Equal(3, ticks)
	s.False(sched.Pending(KindTick))
}
