package session

import (
	"fmt"
	"sort"
	"sync"
)

// Manager tracks the sessions attached to live terminals.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session // terminal id -> session
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Attach registers s under the terminal id.
//
// Precondition: id must be non-empty; s must be non-nil.
// Postcondition: Returns an error if id is already attached.
func (m *Manager) Attach(id string, s *Session) error {
	if id == "" {
		return fmt.Errorf("attaching session: empty terminal id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; exists {
		return fmt.Errorf("terminal %q already attached", id)
	}
	m.sessions[id] = s
	return nil
}

// Detach removes the session attached to id.
//
// Postcondition: Returns an error if id was not attached.
func (m *Manager) Detach(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return fmt.Errorf("terminal %q not attached", id)
	}
	delete(m.sessions, id)
	return nil
}

// Get returns the session attached to id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of attached sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Spinning returns the sorted ids of sessions with a draw in progress.
//
// Postcondition: Returns a slice of ids (may be empty).
func (m *Manager) Spinning() []string {
	m.mu.RLock()
	snapshot := make(map[string]*Session, len(m.sessions))
	for id, s := range m.sessions {
		snapshot[id] = s
	}
	m.mu.RUnlock()

	var ids []string
	for id, s := range snapshot {
		if s.State() == InProgress {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
