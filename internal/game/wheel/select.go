// Package wheel implements weighted prize selection for the lucky draw wheel.
package wheel

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/rng"
)

// ErrInvalidInput reports a malformed selection universe: empty, a negative
// or NaN weight, or a total weight that is not a finite value > 0.
var ErrInvalidInput = errors.New("wheel: invalid input")

// Total validates prizes as a selection universe and returns the sum of
// their weights.
//
// Postcondition: Returns total > 0 and finite, or an error wrapping ErrInvalidInput.
func Total(prizes []prize.Prize) (float64, error) {
	if len(prizes) == 0 {
		return 0, fmt.Errorf("%w: no prizes to choose from", ErrInvalidInput)
	}
	total := 0.0
	for i, p := range prizes {
		if math.IsNaN(p.Weight) || p.Weight < 0 {
			return 0, fmt.Errorf("%w: prize[%d] %q has weight %v", ErrInvalidInput, i, p.ID, p.Weight)
		}
		total += p.Weight
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: total weight %v must be finite and > 0", ErrInvalidInput, total)
	}
	return total, nil
}

// SelectAt returns the index of the prize that the draw r lands on.
//
// The walk returns the first index whose cumulative weight is >= r. If
// rounding lets the walk run off the end, the last index is returned.
//
// Precondition: r is in [0, total) where total is the sum of weights.
// Postcondition: Returns an index in [0, len(prizes)) or an error wrapping
// ErrInvalidInput.
func SelectAt(prizes []prize.Prize, r float64) (int, error) {
	if _, err := Total(prizes); err != nil {
		return 0, err
	}
	return walk(prizes, r), nil
}

func walk(prizes []prize.Prize, r float64) int {
	cum := 0.0
	for i, p := range prizes {
		cum += p.Weight
		if cum >= r {
			return i
		}
	}
	return len(prizes) - 1
}

// Select draws one prize from prizes with probability weight/total.
//
// Precondition: src must be non-nil.
// Postcondition: Returns an element of prizes or an error wrapping ErrInvalidInput.
func Select(prizes []prize.Prize, src rng.Source) (prize.Prize, error) {
	idx, _, err := draw(prizes, src)
	if err != nil {
		return prize.Prize{}, err
	}
	return prizes[idx], nil
}

// draw validates prizes, draws r in [0, total) from src and resolves it.
func draw(prizes []prize.Prize, src rng.Source) (int, float64, error) {
	total, err := Total(prizes)
	if err != nil {
		return 0, 0, err
	}
	r := src.Float64() * total
	return walk(prizes, r), r, nil
}

// IndexOf returns the position of the prize with the given id, or -1.
func IndexOf(prizes []prize.Prize, id string) int {
	for i, p := range prizes {
		if p.ID == id {
			return i
		}
	}
	return -1
}
