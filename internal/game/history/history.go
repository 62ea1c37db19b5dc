// Package history keeps the bounded, most-recent-first list of settled prizes.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/luckydraw/internal/game/prize"
)

// DefaultCapacity is the number of entries kept when no capacity is configured.
const DefaultCapacity = 10

// Entry is one settled draw.
type Entry struct {
	// EntryID is unique per settlement, so the same prize won twice yields two
	// distinguishable entries.
	EntryID   string
	Prize     prize.Prize
	SettledAt time.Time
}

// History is a bounded list ordered from most recent to oldest.
//
// Invariant: Len() <= Cap(). Safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	cap     int
	entries []Entry
	now     func() time.Time
}

// New creates an empty History holding at most capacity entries.
//
// Precondition: capacity >= 1.
func New(capacity int) *History {
	if capacity < 1 {
		panic("history: capacity must be >= 1")
	}
	return &History{
		cap:     capacity,
		entries: make([]Entry, 0, capacity),
		now:     time.Now,
	}
}

// Push records p as the most recent entry, evicting the oldest entry when
// the history is full.
//
// Postcondition: Entries()[0].Prize == p and Len() <= Cap().
func (h *History) Push(p prize.Prize) Entry {
	e := Entry{
		EntryID:   uuid.New().String(),
		Prize:     p,
		SettledAt: h.now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == h.cap {
		h.entries = h.entries[:h.cap-1]
	}
	h.entries = append(h.entries, Entry{})
	copy(h.entries[1:], h.entries[:len(h.entries)-1])
	h.entries[0] = e
	return e
}

// Entries returns a copy of the entries, most recent first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Latest returns the most recent entry, if any.
func (h *History) Latest() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[0], true
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Cap returns the maximum number of entries held.
func (h *History) Cap() int {
	return h.cap
}
