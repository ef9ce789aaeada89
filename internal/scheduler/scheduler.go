// Package scheduler owns the pending timers of a single screen.
//
// Every timer has a Kind and at most one timer per kind is pending. Each
// scheduled timer carries a sequence number; when it fires, the owner must
// Claim that sequence before acting on it. A timer that was cancelled or
// replaced can no longer be claimed, so its callback is a no-op even if the
// underlying clock already released it.
package scheduler

import (
	"sync"
	"time"

	"github.com/mcoot/screenpong/internal/dependencies/clock"
)

// Kind names the concern a timer serves
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindCountdown    Kind = "countdown"
	KindServe        Kind = "serve"
	KindTick         Kind = "tick"
	KindGrace1       Kind = "grace_1"
	KindGrace2       Kind = "grace_2"
)

// FireFunc receives timer expiries. It runs on the clock's goroutine.
type FireFunc func(kind Kind, seq uint64)

type entry struct {
	seq   uint64
	timer clock.Timer
}

// Scheduler holds the pending timers of one screen
type Scheduler struct {
	mu      sync.Mutex
	clock   clock.Clock
	fire    FireFunc
	pending map[Kind]*entry
	seq     uint64
}

// New creates a Scheduler that reports expiries to fire
func New(clk clock.Clock, fire FireFunc) *Scheduler {
	return &Scheduler{
		clock:   clk,
		fire:    fire,
		pending: make(map[Kind]*entry),
	}
}

// Schedule starts a timer of the given kind, replacing any pending timer of
// the same kind. It returns the sequence number the expiry will carry.
func (s *Scheduler) Schedule(kind Kind, delay time.Duration) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked(kind)
	s.seq++
	seq := s.seq
	e := &entry{seq: seq}
	// Registered before the timer exists so an immediate expiry can claim it
	s.pending[kind] = e
	e.timer = s.clock.AfterFunc(delay, func() {
		s.fire(kind, seq)
	})
	return seq
}

// Claim consumes a fired timer. It returns false if the timer was cancelled
// or replaced after it was scheduled.
func (s *Scheduler) Claim(kind Kind, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[kind]
	if !ok || e.seq != seq {
		return false
	}
	delete(s.pending, kind)
	return true
}

// Cancel stops the pending timer of a kind. It is safe to call when nothing
// is pending or the timer already fired.
func (s *Scheduler) Cancel(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(kind)
}

// CancelAll stops every pending timer
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind := range s.pending {
		s.stopLocked(kind)
	}
}

// Pending reports whether a timer of the given kind is outstanding
func (s *Scheduler) Pending(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[kind]
	return ok
}

func (s *Scheduler) stopLocked(kind Kind) {
	e, ok := s.pending[kind]
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(s.pending, kind)
}
