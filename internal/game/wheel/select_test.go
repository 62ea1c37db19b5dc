package wheel_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/rng"
	"github.com/cory-johannsen/luckydraw/internal/game/wheel"
)

// scenario is the A..E universe with total weight 145.
func scenario() []prize.Prize {
	return []prize.Prize{
		{ID: "A", Label: "A", Weight: 30, Color: "#000001"},
		{ID: "B", Label: "B", Weight: 20, Color: "#000002"},
		{ID: "C", Label: "C", Weight: 40, Color: "#000003"},
		{ID: "D", Label: "D", Weight: 5, Color: "#000004"},
		{ID: "E", Label: "E", Weight: 50, Color: "#000005"},
	}
}

func selectAtID(t *testing.T, prizes []prize.Prize, r float64) string {
	t.Helper()
	idx, err := wheel.SelectAt(prizes, r)
	require.NoError(t, err)
	return prizes[idx].ID
}

func TestTotal(t *testing.T) {
	total, err := wheel.Total(scenario())
	require.NoError(t, err)
	assert.Equal(t, 145.0, total)
}

func TestSelectAt_Scenario(t *testing.T) {
	prizes := scenario()
	assert.Equal(t, "A", selectAtID(t, prizes, 0))
	assert.Equal(t, "A", selectAtID(t, prizes, 29.999))
	assert.Equal(t, "B", selectAtID(t, prizes, math.Nextafter(30, 31)))
	assert.Equal(t, "C", selectAtID(t, prizes, 50.5))
	assert.Equal(t, "D", selectAtID(t, prizes, 94))
	assert.Equal(t, "E", selectAtID(t, prizes, 144.999))
}

// TestSelectAt_BoundaryBelongsToAccumulatedSegment pins the cum >= r rule:
// a draw exactly on a cumulative boundary lands on the segment that closes it.
func TestSelectAt_BoundaryBelongsToAccumulatedSegment(t *testing.T) {
	prizes := scenario()
	assert.Equal(t, "A", selectAtID(t, prizes, 30))
	assert.Equal(t, "B", selectAtID(t, prizes, 50))
	assert.Equal(t, "C", selectAtID(t, prizes, 90))
}

func TestSelectAt_JustBelowTotalReturnsLastPositive(t *testing.T) {
	prizes := scenario()
	assert.Equal(t, "E", selectAtID(t, prizes, math.Nextafter(145, 0)))

	prizes = append(prizes, prize.Prize{ID: "Z", Label: "Z", Weight: 0, Color: "#000006"})
	assert.Equal(t, "E", selectAtID(t, prizes, math.Nextafter(145, 0)))
}

// TestSelectAt_FallbackReturnsLast documents the run-off-the-end policy. The
// fallback can return a zero-weight final prize; this is inherited boundary
// behavior and is flagged here rather than relied upon.
func TestSelectAt_FallbackReturnsLast(t *testing.T) {
	prizes := []prize.Prize{
		{ID: "live", Label: "live", Weight: 1, Color: "#000001"},
		{ID: "dead", Label: "dead", Weight: 0, Color: "#000002"},
	}
	idx, err := wheel.SelectAt(prizes, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1, idx, "walk exhausted: fallback is the last prize even with zero weight")
}

// TestSelectAt_LeadingZeroWeightAtZeroDraw flags the degenerate r == 0 case:
// cum (0) >= r (0) holds on a leading zero-weight prize.
func TestSelectAt_LeadingZeroWeightAtZeroDraw(t *testing.T) {
	prizes := []prize.Prize{
		{ID: "dead", Label: "dead", Weight: 0, Color: "#000001"},
		{ID: "live", Label: "live", Weight: 1, Color: "#000002"},
	}
	assert.Equal(t, "dead", selectAtID(t, prizes, 0))
	assert.Equal(t, "live", selectAtID(t, prizes, 1e-12))
}

func TestSelectAt_ZeroWeightNeverWinsInterior(t *testing.T) {
	prizes := []prize.Prize{
		{ID: "a", Label: "a", Weight: 1, Color: "#000001"},
		{ID: "zero", Label: "zero", Weight: 0, Color: "#000002"},
		{ID: "b", Label: "b", Weight: 1, Color: "#000003"},
	}
	for _, r := range []float64{0, 0.5, math.Nextafter(1, 2), 1.5, math.Nextafter(2, 0)} {
		assert.NotEqual(t, "zero", selectAtID(t, prizes, r), "r=%v", r)
	}
}

func TestSelect_InvalidInput(t *testing.T) {
	src := rng.NewSequenceSource(0.5)
	cases := map[string][]prize.Prize{
		"empty":    nil,
		"negative": {{ID: "a", Weight: 1}, {ID: "b", Weight: -0.5}},
		"zero":     {{ID: "a", Weight: 0}, {ID: "b", Weight: 0}},
		"nan":      {{ID: "a", Weight: math.NaN()}},
		"overflow": {{ID: "a", Weight: math.MaxFloat64}, {ID: "b", Weight: math.MaxFloat64}},
	}
	for name, prizes := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := wheel.Select(prizes, src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, wheel.ErrInvalidInput), "got %v", err)

			_, err = wheel.SelectAt(prizes, 0)
			assert.ErrorIs(t, err, wheel.ErrInvalidInput)
		})
	}
}

func TestSelect_UsesSourceScaledByTotal(t *testing.T) {
	prizes := scenario()
	// 0.5 * 145 = 72.5 falls inside C (50, 90].
	got, err := wheel.Select(prizes, rng.NewSequenceSource(0.5))
	require.NoError(t, err)
	assert.Equal(t, "C", got.ID)

	got, err = wheel.Select(prizes, rng.NewSequenceSource(0))
	require.NoError(t, err)
	assert.Equal(t, "A", got.ID)
}

func TestSelect_SinglePrize(t *testing.T) {
	prizes := []prize.Prize{{ID: "only", Label: "only", Weight: 3, Color: "#000000"}}
	got, err := wheel.Select(prizes, rng.NewCryptoSource())
	require.NoError(t, err)
	assert.Equal(t, prizes[0], got)
}

func TestIndexOf(t *testing.T) {
	prizes := scenario()
	assert.Equal(t, 0, wheel.IndexOf(prizes, "A"))
	assert.Equal(t, 4, wheel.IndexOf(prizes, "E"))
	assert.Equal(t, -1, wheel.IndexOf(prizes, "nope"))
}

func TestSelector_ReturnsPositionOfWinner(t *testing.T) {
	sel := wheel.NewSelector(rng.NewSequenceSource(0.99), zaptest.NewLogger(t))
	prizes := scenario()
	won, idx, err := sel.Select(prizes)
	require.NoError(t, err)
	assert.Equal(t, 4, idx)
	assert.Equal(t, prizes[idx], won)
}

func TestSelector_RejectsInvalid(t *testing.T) {
	sel := wheel.NewSelector(rng.NewCryptoSource(), zaptest.NewLogger(t))
	_, _, err := sel.Select(nil)
	assert.ErrorIs(t, err, wheel.ErrInvalidInput)
}

func TestNewSelector_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { wheel.NewSelector(nil, zaptest.NewLogger(t)) })
	assert.Panics(t, func() { wheel.NewSelector(rng.NewCryptoSource(), nil) })
}

// TestSelect_Distribution draws 200,000 times and checks the empirical
// frequencies against weight/total with a chi-squared test at p = 0.001.
func TestSelect_Distribution(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	const draws = 200000
	// Critical value for df = 4 at the 0.999 quantile.
	const critical = 18.467

	prizes := scenario()
	src := rng.NewSeededSource(20240611)
	counts := make([]int, len(prizes))
	for i := 0; i < draws; i++ {
		got, err := wheel.Select(prizes, src)
		require.NoError(t, err)
		counts[wheel.IndexOf(prizes, got.ID)]++
	}

	stat, err := wheel.ChiSquared(counts, prize.Weights(prizes))
	require.NoError(t, err)
	assert.Less(t, stat, critical, "counts %v", counts)

	for i, p := range prizes {
		want := p.Weight / 145
		got := float64(counts[i]) / draws
		assert.InDelta(t, want, got, 0.01, "prize %s", p.ID)
	}
}

// TestProperty_Select_ReturnsMember verifies the result is always an element
// of the input, taken at the index SelectAt resolves for the same draw.
func TestProperty_Select_ReturnsMember(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.Float64Range(0, 100), 1, 12).Draw(rt, "weights")
		weights[rapid.IntRange(0, len(weights)-1).Draw(rt, "bump")] += 0.5
		u := rapid.Float64Range(0, 0.999999).Draw(rt, "u")

		prizes := make([]prize.Prize, len(weights))
		total := 0.0
		for i, w := range weights {
			prizes[i] = prize.Prize{ID: string(rune('a' + i)), Label: "p", Weight: w, Color: "#000000"}
			total += w
		}

		got, err := wheel.Select(prizes, rng.NewSequenceSource(u))
		require.NoError(rt, err)
		idx, err := wheel.SelectAt(prizes, u*total)
		require.NoError(rt, err)
		assert.Equal(rt, prizes[idx], got)
	})
}

// TestProperty_SelectAt_Monotonic verifies a larger draw never lands earlier.
func TestProperty_SelectAt_Monotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.Float64Range(0.01, 50), 1, 10).Draw(rt, "weights")
		prizes := make([]prize.Prize, len(weights))
		total := 0.0
		for i, w := range weights {
			prizes[i] = prize.Prize{ID: string(rune('a' + i)), Weight: w}
			total += w
		}
		a := rapid.Float64Range(0, total).Draw(rt, "a")
		b := rapid.Float64Range(a, total).Draw(rt, "b")

		ia, err := wheel.SelectAt(prizes, a)
		require.NoError(rt, err)
		ib, err := wheel.SelectAt(prizes, b)
		require.NoError(rt, err)
		assert.LessOrEqual(rt, ia, ib)
	})
}
