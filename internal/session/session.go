// Package session holds the currently authenticated user.
//
// A Session is a single slot with last-writer-wins semantics. It is passed
// explicitly to the services that need it instead of living in a global.
package session

import (
	"sync"

	"github.com/yukikurage/taskboard-api/internal/models"
)

type Session struct {
	mu   sync.RWMutex
	user *models.User
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// SetCurrent replaces the held user unconditionally.
func (s *Session) SetCurrent(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

// Current returns the held user, or false when nobody is logged in.
func (s *Session) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Clear empties the slot.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
