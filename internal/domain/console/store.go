package console

import (
	"strings"
	"sync"
)

// PromptState is the lifecycle position of a single prompt key.
type PromptState int

const (
	// PromptUnseen means the prompt has never been requested in this session.
	PromptUnseen PromptState = iota
	// PromptPending means the prompt was requested but has no usable value.
	PromptPending
	// PromptSatisfied means the prompt holds a non-blank value.
	PromptSatisfied
)

func (s PromptState) String() string {
	switch s {
	case PromptUnseen:
		return "unseen"
	case PromptPending:
		return "pending"
	case PromptSatisfied:
		return "satisfied"
	default:
		return "unknown"
	}
}

// Entry is a single prompt/value pair of an InputStore.
type Entry struct {
	Prompt string `json:"prompt"`
	Value  string `json:"value"`
}

// InputStore maps prompts to the last value supplied for them. Entries keep
// the order in which prompts were first requested.
//
// Keys from earlier sources are never pruned; only Clear removes entries.
type InputStore struct {
	mu     sync.RWMutex
	order  []string
	values map[string]string
}

// NewInputStore returns an empty store.
func NewInputStore() *InputStore {
	return &InputStore{values: make(map[string]string)}
}

// Ensure creates an empty entry for prompt if none exists and reports whether
// it did.
func (s *InputStore) Ensure(prompt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[prompt]; ok {
		return false
	}
	s.order = append(s.order, prompt)
	s.values[prompt] = ""
	return true
}

// Set stores value for prompt, creating the entry when needed.
func (s *InputStore) Set(prompt, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[prompt]; !ok {
		s.order = append(s.order, prompt)
	}
	s.values[prompt] = value
}

// Lookup returns the stored value for prompt.
func (s *InputStore) Lookup(prompt string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[prompt]
	return value, ok
}

// State reports where prompt is in its lifecycle.
func (s *InputStore) State(prompt string) PromptState {
	value, ok := s.Lookup(prompt)
	switch {
	case !ok:
		return PromptUnseen
	case IsBlank(value):
		return PromptPending
	default:
		return PromptSatisfied
	}
}

// Entries returns a copy of all entries in first-request order.
func (s *InputStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.order))
	for _, prompt := range s.order {
		entries = append(entries, Entry{Prompt: prompt, Value: s.values[prompt]})
	}
	return entries
}

// Len returns the number of entries.
func (s *InputStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear removes every entry.
func (s *InputStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.values = make(map[string]string)
}

// IsBlank reports whether a supplied value counts as "not yet supplied".
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
