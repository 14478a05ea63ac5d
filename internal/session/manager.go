// Package session keeps per-visitor wizard and ballot state in memory.
// Nothing here outlives the process.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hyperengineering/aequiflow/internal/types"
	"github.com/hyperengineering/aequiflow/internal/voting"
	"github.com/hyperengineering/aequiflow/internal/wizard"
)

// Options configures a Manager.
type Options struct {
	// IdleTTL is how long a session may go unused before Sweep removes it.
	IdleTTL time.Duration
	Wizard  wizard.Options
	Now     func() time.Time
}

// Manager owns every live session.
type Manager struct {
	items []types.ValidationItem
	opts  Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions vote on copies of items.
func NewManager(items []types.ValidationItem, opts Options) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		items:    append([]types.ValidationItem(nil), items...),
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// newWizard returns a wizard with location detection already running.
func (m *Manager) newWizard() *wizard.Wizard {
	w := wizard.New(m.opts.Wizard)
	w.StartLocationDetection()
	return w
}

// Create starts a new session with a random id.
func (m *Manager) Create() *Session {
	now := m.opts.Now().UTC()
	s := &Session{
		ID:       uuid.NewString(),
		Created:  now,
		ballot:   voting.NewBallot(m.items),
		lastSeen: now,
		newWiz:   m.newWizard,
	}
	s.wizard = m.newWizard()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Debug("session created",
		"component", "session",
		"action", "session_created",
		"session_id", s.ID,
	)
	return s
}

// Get returns the session and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.Touch(m.opts.Now().UTC())
	return s, true
}

// GetOrCreate returns the session for id, creating a new one when id is
// empty or unknown. The boolean reports whether a session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed. A non-positive TTL disables expiry.
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
