// Package rng provides the randomness abstraction used by the prize wheel.
package rng

import (
	"fmt"
	"sync"
)

// Source is the randomness provider for draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64
}

// sequenceSource replays a fixed list of values, wrapping around at the end.
type sequenceSource struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequenceSource returns a Source that yields values in order and then
// repeats from the beginning. Intended for deterministic tests and demos.
//
// Precondition: len(values) >= 1 and every value is in [0, 1).
// Panics with "rng: ..." if the precondition is violated.
func NewSequenceSource(values ...float64) Source {
	if len(values) == 0 {
		panic("rng: NewSequenceSource requires at least one value")
	}
	for i, v := range values {
		if !(v >= 0 && v < 1) {
			panic(fmt.Sprintf("rng: sequence value[%d] = %v is outside [0, 1)", i, v))
		}
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	return &sequenceSource{values: cp}
}

// Float64 returns the next value in the sequence.
func (s *sequenceSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}
