package mocks

import (
	"github.com/mcoot/screenpong/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// Float64Results is a queue of results to return from Float64
	Float64Results []float64
	float64Index   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Float64 returns the next queued result, or 0.5 (a straight serve) if none remaining
func (r *MockRandom) Float64() float64 {
	if r.float64Index >= len(r.Float64Results) {
		return 0.5
	}
	result := r.Float64Results[r.float64Index]
	r.float64Index++
	return result
}

// QueueFloat64 adds values to the Float64 result queue
func (r *MockRandom) QueueFloat64(values ...float64) {
	r.Float64Results = append(r.Float64Results, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.Float64Results = nil
	r.float64Index = 0
}
