package wheel

import (
	"fmt"
	"math"
)

// ChiSquared returns Pearson's goodness-of-fit statistic comparing observed
// counts against the distribution implied by weights. Categories with zero
// weight contribute nothing when they were never observed; an observation in
// a zero-weight category yields +Inf.
//
// Precondition: len(observed) == len(weights); weights sum to > 0.
// Postcondition: Returns the statistic (df = positive-weight categories - 1)
// or a non-nil error.
func ChiSquared(observed []int, weights []float64) (float64, error) {
	if len(observed) != len(weights) {
		return 0, fmt.Errorf("chi-squared: %d observations for %d weights", len(observed), len(weights))
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if !(total > 0) {
		return 0, fmt.Errorf("chi-squared: weights must sum to > 0")
	}
	n := 0
	for _, o := range observed {
		n += o
	}

	stat := 0.0
	for i, o := range observed {
		expected := float64(n) * weights[i] / total
		if expected == 0 {
			if o > 0 {
				return math.Inf(1), nil
			}
			continue
		}
		d := float64(o) - expected
		stat += d * d / expected
	}
	return stat, nil
}
