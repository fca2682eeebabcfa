package console

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "pyconsole/internal/domain/console"
	"pyconsole/internal/observability"
)

// SessionStore keeps console sessions in process memory.
type SessionStore struct {
	idleTimeout time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.Mutex
	sessions map[string]*domain.Session
}

// NewSessionStore creates a store whose sessions expire after idleTimeout
// without use. A zero idleTimeout keeps sessions until they are deleted.
func NewSessionStore(idleTimeout time.Duration) *SessionStore {
	return &SessionStore{
		idleTimeout: idleTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
		sessions:    make(map[string]*domain.Session),
	}
}

// Create starts a new empty session.
func (s *SessionStore) Create() *domain.Session {
	sess := domain.NewSession(s.newID(), s.now())

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	observability.SessionsActive.Inc()
	return sess
}

// Get returns the session with id and marks it as used.
func (s *SessionStore) Get(id string) (*domain.Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	sess.Touch(s.now())
	return sess, nil
}

// Delete discards the session with id.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	observability.SessionsActive.Dec()
	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the idle timeout. Sessions with
// an execution in flight are kept.
func (s *SessionStore) Sweep() int {
	if s.idleTimeout <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Busy() || sess.LastSeen().After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}

	observability.SessionsActive.Sub(float64(removed))
	return removed
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.idleTimeout <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
