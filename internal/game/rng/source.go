package rng

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// float53 is 2^53, the number of distinct float64 values in [0, 1) that a
// 53-bit mantissa can represent evenly.
const float53 = 1 << 53

// cryptoSource implements Source using crypto/rand.
//
// Invariant: every value produced is uniformly distributed in [0, 1).
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a cryptographically secure float in [0, 1).
//
// Panics with "rng: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / float53
}

// seededSource is a reproducible PCG-backed Source.
type seededSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeededSource returns a reproducible Source. Two sources created with the
// same seed yield identical sequences.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewSeededSource(seed uint64) Source {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, 0))}
}

// Float64 returns the next pseudo-random float in [0, 1).
func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
