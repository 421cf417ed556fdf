package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jrklab/basket-counting/internal/domain/model"
)

// SessionStore keeps the session's shot history in memory. Reads take
// the read lock so stats and listings do not block recording.
type SessionStore struct {
	mu        sync.RWMutex
	sessionID string
	shots     []model.ShotEvent
	makes     int
	misses    int
}

var _ Store = (*SessionStore)(nil)

// NewSessionStore creates an empty store with a fresh session id.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessionID: uuid.NewString(),
	}
}

// Record appends a classified shot to the session.
func (s *SessionStore) Record(_ context.Context, e model.ShotEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shots = append(s.shots, e)
	switch e.Classification {
	case model.Make:
		s.makes++
	case model.Miss:
		s.misses++
	}
	return nil
}

// List returns a copy of all shots in arrival order.
func (s *SessionStore) List(_ context.Context) ([]model.ShotEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ShotEvent, len(s.shots))
	copy(out, s.shots)
	return out, nil
}

// Stats returns make/miss counts and the shooting percentage.
func (s *SessionStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		SessionID: s.sessionID,
		Makes:     s.makes,
		Misses:    s.misses,
		Total:     s.makes + s.misses,
	}
	if st.Total > 0 {
		st.Percentage = float64(st.Makes) / float64(st.Total) * 100.0
	}
	return st, nil
}

// Reset discards the history and starts a new session.
func (s *SessionStore) Reset(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = uuid.NewString()
	s.shots = nil
	s.makes = 0
	s.misses = 0
	return s.sessionID, nil
}

// Count returns the number of shots recorded in the session.
func (s *SessionStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shots)
}
