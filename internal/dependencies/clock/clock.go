package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// AfterFunc calls f in its own goroutine after d has elapsed
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a pending AfterFunc call
type Timer interface {
	// Stop prevents the call from firing. It returns false if the call
	// already fired or was already stopped.
	Stop() bool
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f using time.AfterFunc
func (c *RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
