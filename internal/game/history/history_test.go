package history_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/luckydraw/internal/game/history"
	"github.com/cory-johannsen/luckydraw/internal/game/prize"
)

func numbered(i int) prize.Prize {
	return prize.Prize{ID: fmt.Sprintf("p%d", i), Label: fmt.Sprintf("Prize %d", i), Weight: 1, Color: "#FFFFFF"}
}

func ids(entries []history.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Prize.ID
	}
	return out
}

func TestHistory_Empty(t *testing.T) {
	h := history.New(history.DefaultCapacity)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 10, h.Cap())
	_, ok := h.Latest()
	assert.False(t, ok)
	assert.Empty(t, h.Entries())
}

func TestHistory_MostRecentFirst(t *testing.T) {
	h := history.New(10)
	h.Push(numbered(1))
	h.Push(numbered(2))
	h.Push(numbered(3))
	assert.Equal(t, []string{"p3", "p2", "p1"}, ids(h.Entries()))

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "p3", latest.Prize.ID)
}

func TestHistory_EleventhEvictsExactlyOldest(t *testing.T) {
	h := history.New(10)
	for i := 1; i <= 10; i++ {
		h.Push(numbered(i))
	}
	require.Equal(t, 10, h.Len())
	before := ids(h.Entries())

	h.Push(numbered(11))
	after := ids(h.Entries())
	assert.Equal(t, 10, h.Len())
	assert.Equal(t, "p11", after[0])
	assert.Equal(t, before[:9], after[1:])
	assert.NotContains(t, after, "p1")
}

func TestHistory_DuplicatePrizesGetDistinctEntryIDs(t *testing.T) {
	h := history.New(3)
	a := h.Push(numbered(1))
	b := h.Push(numbered(1))
	assert.NotEqual(t, a.EntryID, b.EntryID)
	assert.NotEmpty(t, a.EntryID)
	assert.False(t, b.SettledAt.IsZero())
}

func TestHistory_EntriesIsACopy(t *testing.T) {
	h := history.New(3)
	h.Push(numbered(1))
	entries := h.Entries()
	entries[0].Prize.ID = "mutated"
	latest, _ := h.Latest()
	assert.Equal(t, "p1", latest.Prize.ID)
}

func TestHistory_CapacityOne(t *testing.T) {
	h := history.New(1)
	h.Push(numbered(1))
	h.Push(numbered(2))
	assert.Equal(t, []string{"p2"}, ids(h.Entries()))
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { history.New(0) })
}

// TestProperty_History_BoundedAndOrdered verifies after any sequence of pushes
// the history holds the last min(n, cap) prizes newest first.
func TestProperty_History_BoundedAndOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 15).Draw(rt, "capacity")
		n := rapid.IntRange(0, 40).Draw(rt, "pushes")

		h := history.New(capacity)
		for i := 0; i < n; i++ {
			h.Push(numbered(i))
			latest, ok := h.Latest()
			require.True(rt, ok)
			assert.Equal(rt, fmt.Sprintf("p%d", i), latest.Prize.ID)
			assert.LessOrEqual(rt, h.Len(), capacity)
		}

		got := ids(h.Entries())
		want := []string{}
		for i := n - 1; i >= 0 && len(want) < capacity; i-- {
			want = append(want, fmt.Sprintf("p%d", i))
		}
		assert.Equal(rt, want, got)
	})
}
