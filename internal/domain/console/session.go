package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"pyconsole/internal/domain/execution"
)

// ErrSessionNotFound is returned when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Session holds the state of one interactive console: the editable source,
// the InputStore and the last execution result. It owns a single execution
// slot so at most one run is in flight per session.
type Session struct {
	id        string
	createdAt time.Time
	slot      chan struct{}

	mu       sync.RWMutex
	source   string
	inputs   *InputStore
	last     *execution.Result
	lastSeen time.Time
}

// NewSession creates an empty session.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		id:        id,
		createdAt: now,
		lastSeen:  now,
		slot:      make(chan struct{}, 1),
		inputs:    NewInputStore(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Source returns the current source text.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// SetSource replaces the source text.
func (s *Session) SetSource(source string) {
	s.mu.Lock()
	s.source = source
	s.mu.Unlock()
}

// Inputs returns the session InputStore.
func (s *Session) Inputs() *InputStore {
	return s.inputs
}

// Last returns a copy of the last execution result, if any.
func (s *Session) Last() (execution.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return execution.Result{}, false
	}
	return *s.last, true
}

// SetLast records the result of the latest execution.
func (s *Session) SetLast(res execution.Result) {
	s.mu.Lock()
	s.last = &res
	s.mu.Unlock()
}

// Clear resets the source, the InputStore and the last result together.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = ""
	s.last = nil
	s.inputs.Clear()
}

// Touch marks the session as used at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	s.mu.Unlock()
}

// LastSeen returns the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Acquire takes the execution slot, blocking until it is free or ctx ends.
// The returned function releases the slot.
func (s *Session) Acquire(ctx context.Context) (func(), error) {
	select {
	case s.slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-s.slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Busy reports whether an execution currently holds the slot.
func (s *Session) Busy() bool {
	return len(s.slot) > 0
}
