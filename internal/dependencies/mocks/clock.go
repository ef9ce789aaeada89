package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/mcoot/screenpong/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Timers only fire from Advance, synchronously on the caller's goroutine.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	timers      []*MockTimer
	nextID      int
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// AfterFunc registers f to run once the clock is advanced past d
func (c *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &MockTimer{clock: c, id: c.nextID, due: c.CurrentTime.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by the given duration, firing every timer
// that becomes due in order. Timers scheduled by fired callbacks also fire
// if they fall inside the window.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.CurrentTime.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.popDue(target)
		if next == nil {
			c.CurrentTime = target
			c.mu.Unlock()
			return
		}
		if next.due.After(c.CurrentTime) {
			c.CurrentTime = next.due
		}
		c.mu.Unlock()

		next.f()
	}
}

// Set sets the clock to the given time without firing timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}

// PendingTimers returns the number of timers that have not fired or stopped
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// popDue removes and returns the earliest timer due at or before target.
// Caller must hold c.mu.
func (c *MockClock) popDue(target time.Time) *MockTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].due.Equal(c.timers[j].due) {
			return c.timers[i].id < c.timers[j].id
		}
		return c.timers[i].due.Before(c.timers[j].due)
	})
	first := c.timers[0]
	if first.due.After(target) {
		return nil
	}
	c.timers = c.timers[1:]
	return first
}

func (c *MockClock) remove(t *MockTimer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, pending := range c.timers {
		if pending == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

// MockTimer is the handle returned by MockClock.AfterFunc
type MockTimer struct {
	clock *MockClock
	id    int
	due   time.Time
	f     func()
}

// Stop removes the timer if it has not fired yet
func (t *MockTimer) Stop() bool {
	return t.clock.remove(t)
}
