package session

import (
	"sync"
	"time"

	"github.com/hyperengineering/aequiflow/internal/voting"
	"github.com/hyperengineering/aequiflow/internal/wizard"
)

// Session is one visitor's ephemeral state: a report wizard and a ballot.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	wizard   *wizard.Wizard
	ballot   *voting.Ballot
	lastSeen time.Time
	newWiz   func() *wizard.Wizard
}

// Wizard returns the session's current wizard.
func (s *Session) Wizard() *wizard.Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard
}

// Ballot returns the session's validation ballot.
func (s *Session) Ballot() *voting.Ballot {
	return s.ballot
}

// ResetWizard discards the current wizard, cancelling its detection task,
// and starts a fresh one.
func (s *Session) ResetWizard() *wizard.Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wizard != nil {
		s.wizard.Close()
	}
	s.wizard = s.newWiz()
	return s.wizard
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Touch updates the last-seen timestamp.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// Close cancels the wizard's detection task.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard != nil {
		s.wizard.Close()
	}
}
