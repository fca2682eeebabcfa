package producer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/ports"
)

// Service implements ports.ScriptProducer over a list of script files on
// disk. Files are read lazily as scripts are requested.
type Service struct {
	mu      sync.Mutex
	paths   []string
	scripts []execution.Script
	index   int
}

var _ ports.ScriptProducer = (*Service)(nil)

// NewService builds a producer that yields the scripts at paths in order.
func NewService(paths ...string) *Service {
	return &Service{
		paths: append([]string(nil), paths...),
	}
}

// NextScript returns the next script, loading files before scripts added
// with AddScript.
func (s *Service) NextScript(ctx context.Context) (execution.Script, error) {
	select {
	case <-ctx.Done():
		return execution.Script{}, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index < len(s.paths) {
		path := s.paths[s.index]
		s.index++
		script, err := execution.LoadScript(path)
		if err != nil {
			return execution.Script{}, fmt.Errorf("load %s: %w", path, err)
		}
		return script, nil
	}

	queued := s.index - len(s.paths)
	if queued >= len(s.scripts) {
		return execution.Script{}, io.EOF
	}

	script := s.scripts[queued]
	s.index++

	return script, nil
}

// AddScript allows extending the producer catalogue at runtime.
func (s *Service) AddScript(script execution.Script) {
	if script.ID == "" {
		script.ID = time.Now().UTC().Format(time.RFC3339Nano)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scripts = append(s.scripts, script)
}
