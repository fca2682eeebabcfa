// Package mediator turns blocking input requests from running programs into
// InputStore lookups for a request/response UI that cannot block.
//
// A Mediator lives for a single execution attempt. When a prompt has no
// usable value it reports the value as unavailable; the engine then aborts
// the run and the UI renders an input control for every pending prompt. The
// caller re-runs once the user supplies values.
package mediator

import (
	"sync"

	"pyconsole/internal/domain/console"
)

// ValueSource supplies the value currently entered in the UI for a prompt.
// ok is false when the UI has no control for that prompt yet.
type ValueSource interface {
	Value(prompt string) (value string, ok bool)
}

// Values is a ValueSource backed by a map, typically built from a form post.
type Values map[string]string

// Value implements ValueSource.
func (v Values) Value(prompt string) (string, bool) {
	value, ok := v[prompt]
	return value, ok
}

// Mediator resolves input requests against a session InputStore.
type Mediator struct {
	store *console.InputStore
	ui    ValueSource

	mu       sync.Mutex
	surfaced []string
	seen     map[string]struct{}
	pending  []string
}

// New builds a Mediator for one execution attempt. ui may be nil.
func New(store *console.InputStore, ui ValueSource) *Mediator {
	return &Mediator{
		store: store,
		ui:    ui,
		seen:  make(map[string]struct{}),
	}
}

// Resolve answers one input request.
//
// Unseen prompts get an empty entry first. The UI value, when present,
// overwrites the stored value before it is evaluated. A blank value leaves the
// prompt pending and is reported as unavailable.
func (m *Mediator) Resolve(prompt string) (string, bool) {
	m.store.Ensure(prompt)
	m.surface(prompt)

	if m.ui != nil {
		if value, ok := m.ui.Value(prompt); ok {
			m.store.Set(prompt, value)
		}
	}

	value, _ := m.store.Lookup(prompt)
	if console.IsBlank(value) {
		m.markPending(prompt)
		return "", false
	}
	return value, true
}

// Surfaced returns every prompt requested during this attempt, in request order.
func (m *Mediator) Surfaced() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.surfaced...)
}

// Pending returns the prompts that were found without a usable value.
func (m *Mediator) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pending...)
}

func (m *Mediator) surface(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.seen[prompt]; ok {
		return
	}
	m.seen[prompt] = struct{}{}
	m.surfaced = append(m.surfaced, prompt)
}

func (m *Mediator) markPending(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.pending {
		if existing == prompt {
			return
		}
	}
	m.pending = append(m.pending, prompt)
}
