package random

import (
	"crypto/rand"
	"encoding/binary"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Float64 returns a random float in [0, 1)
	Float64() float64
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Float64 returns a cryptographically random float in [0, 1)
func (r *CryptoRandom) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Serve straight ahead on error (should never happen with crypto/rand)
		return 0.5
	}
	// 53 random bits give every representable float in [0, 1)
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}
