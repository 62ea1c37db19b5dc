// Package prize defines the prize catalog: the outcomes a draw can land on.
package prize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Prize is one segment of the wheel.
//
// Invariant: a Prize is never mutated after its catalog is loaded.
type Prize struct {
	ID     string  `yaml:"id"`
	Label  string  `yaml:"label"`
	Weight float64 `yaml:"weight"`
	Color  string  `yaml:"color"`
}

// RGB decodes Color, which must have the form "#RRGGBB".
//
// Postcondition: Returns the three channel values or a non-nil error.
func (p Prize) RGB() (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(p.Color, "#")
	if len(hex) != 6 || !strings.HasPrefix(p.Color, "#") {
		return 0, 0, 0, fmt.Errorf("prize %q: color %q must have the form #RRGGBB", p.ID, p.Color)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("prize %q: color %q: %w", p.ID, p.Color, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// Validate checks the catalog invariants for an ordered list of prizes.
//
// Postcondition: Returns nil iff the list is non-empty, ids are unique and
// non-empty, labels are non-empty, colors parse, every weight is finite and
// >= 0, and the weights sum to a finite value > 0. Every violation found is
// reported in a single error.
func Validate(prizes []Prize) error {
	if len(prizes) == 0 {
		return fmt.Errorf("prize catalog must contain at least one prize")
	}

	var errs []string
	seen := make(map[string]int, len(prizes))
	total := 0.0
	for i, p := range prizes {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("prize[%d] must have a non-empty id", i))
		} else if j, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Sprintf("prize[%d] id %q duplicates prize[%d]", i, p.ID, j))
		} else {
			seen[p.ID] = i
		}
		if strings.TrimSpace(p.Label) == "" {
			errs = append(errs, fmt.Sprintf("prize[%d] must have a non-empty label", i))
		}
		if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) || p.Weight < 0 {
			errs = append(errs, fmt.Sprintf("prize[%d] weight must be finite and >= 0, got %v", i, p.Weight))
		} else {
			total += p.Weight
		}
		if _, _, _, err := p.RGB(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) == 0 && !(total > 0) {
		errs = append(errs, "prize weights must sum to a value > 0")
	}
	if len(errs) == 0 && math.IsInf(total, 0) {
		errs = append(errs, "prize weights overflow")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid prize catalog: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Default returns the built-in promotional catalog.
//
// Postcondition: Validate(Default()) == nil; the caller owns the returned slice.
func Default() []Prize {
	return []Prize{
		{ID: "1", Label: "10% OFF", Weight: 30, Color: "#A78BFA"},
		{ID: "2", Label: "FREE SHIP", Weight: 20, Color: "#4ADE80"},
		{ID: "3", Label: "TRY AGAIN", Weight: 40, Color: "#F87171"},
		{ID: "4", Label: "GRAND PRIZE", Weight: 5, Color: "#FACC15"},
		{ID: "5", Label: "5% OFF", Weight: 50, Color: "#94A3B8"},
	}
}

// Weights returns the weights of prizes in order.
func Weights(prizes []Prize) []float64 {
	out := make([]float64, len(prizes))
	for i, p := range prizes {
		out[i] = p.Weight
	}
	return out
}
