package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"rscapproval/internal/registry"
	"rscapproval/internal/workflow"
)

// ErrSessionNotFound is returned for unknown or deleted session keys.
var ErrSessionNotFound = errors.New("session not found")

// sessionEntry is one wizard session with its own lock.
type sessionEntry struct {
	mu      sync.Mutex
	session *workflow.Session

	// token is the dedup token used when the client submits without one,
	// so retried submits of the same session store one record.
	token     string
	createdAt time.Time
}

// SessionManager owns the live sessions, one per session key.
//
// Sessions never share state. The manager lock only guards the map; each
// session is serialised by its own lock.
type SessionManager struct {
	reg *registry.Registry

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewSessionManager creates an empty manager for reg.
func NewSessionManager(reg *registry.Registry) *SessionManager {
	return &SessionManager{
		reg:      reg,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create starts a session on pathID and returns its key.
func (m *SessionManager) Create(pathID string) (string, workflow.Snapshot, error) {
	s := workflow.NewSession(m.reg)
	if err := s.InitWorkflow(pathID); err != nil {
		return "", workflow.Snapshot{}, err
	}

	id := uuid.NewString()
	entry := &sessionEntry{session: s, token: uuid.NewString(), createdAt: time.Now()}

	m.mu.Lock()
	m.sessions[id] = entry
	m.mu.Unlock()

	return id, s.Snapshot(), nil
}

// With runs fn with exclusive access to the session id.
func (m *SessionManager) With(id string, fn func(s *workflow.Session, token string) error) error {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session, entry.token)
}

// Delete resets and removes a session. It reports whether the key existed.
func (m *SessionManager) Delete(id string) bool {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		entry.mu.Lock()
		entry.session.ResetWorkflow()
		entry.mu.Unlock()
	}
	return ok
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
