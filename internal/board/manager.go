package board

import (
	"sync"
	"time"
)

// Manager tracks at most one active drag session per user. The session
// object is explicit state handed around by id, not a process-wide singleton
// read by whoever renders.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session // userID -> active session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Begin starts a new session, cancelling any gesture the user left dangling
// (e.g. a dropped connection mid-drag).
func (m *Manager) Begin(userID, itemID string, origin Point, layout Layout, touch bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.sessions[userID]; ok {
		old.Cancel()
	}

	session, err := NewSession(userID, itemID, origin, layout, touch, time.Now())
	if err != nil {
		return nil, err
	}
	m.sessions[userID] = session
	return session, nil
}

// Move forwards a pointer movement to the user's active session.
func (m *Manager) Move(userID string, p Point) (*Hover, State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[userID]
	if !ok {
		return nil, StateIdle, ErrNotDragging
	}
	hover := session.Move(p, time.Now())
	return hover, session.State(), nil
}

// Drop resolves the user's active session into a MovePlan (nil for no-op
// drops) and ends it.
func (m *Manager) Drop(userID string, p Point) (*MovePlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotDragging
	}
	delete(m.sessions, userID)
	return session.Drop(p, time.Now()), nil
}

// Cancel aborts the user's active session, if any.
func (m *Manager) Cancel(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[userID]; ok {
		session.Cancel()
		delete(m.sessions, userID)
	}
}
