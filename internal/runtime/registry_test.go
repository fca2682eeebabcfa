package runtime

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pyconsole/internal/domain/execution"
)

type stubBackend struct {
	name     string
	closeErr error
	closed   bool
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Evaluate(ctx context.Context, source string, resolve execution.InputResolver) (*execution.Outcome, error) {
	return &execution.Outcome{Termination: execution.TerminationCompleted}, nil
}

func (s *stubBackend) RunScript(ctx context.Context, script execution.Script) (*execution.ScriptResult, error) {
	return &execution.ScriptResult{Status: execution.StatusOK}, nil
}

func (s *stubBackend) Install(ctx context.Context, requirement string) (*execution.InstallResult, error) {
	return &execution.InstallResult{Package: requirement, OK: true}, nil
}

func (s *stubBackend) Close() error {
	s.closed = true
	return s.closeErr
}

func TestNewRegistryValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(); err == nil {
		t.Fatalf("expected error for empty registry")
	}
	if _, err := NewRegistry(nil); err == nil {
		t.Fatalf("expected error for nil backend")
	}
	if _, err := NewRegistry(&stubBackend{}); err == nil {
		t.Fatalf("expected error for unnamed backend")
	}
	if _, err := NewRegistry(&stubBackend{name: "local"}, &stubBackend{name: "local"}); err == nil {
		t.Fatalf("expected error for duplicate backend")
	}
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	local := &stubBackend{name: "local"}
	docker := &stubBackend{name: "docker"}
	reg, err := NewRegistry(local, docker)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	got, err := reg.Backend("docker")
	if err != nil || got != docker {
		t.Fatalf("expected docker backend, got %v (err=%v)", got, err)
	}

	_, err = reg.Backend("firecracker")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	if !strings.Contains(err.Error(), "docker") {
		t.Fatalf("expected available backends in error, got %v", err)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "docker" || names[1] != "local" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestRegistryCloseJoinsErrors(t *testing.T) {
	t.Parallel()

	ok := &stubBackend{name: "local"}
	failing := &stubBackend{name: "docker", closeErr: errors.New("boom")}
	reg, err := NewRegistry(ok, failing)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	err = reg.Close()
	if err == nil || !strings.Contains(err.Error(), "docker: boom") {
		t.Fatalf("expected joined close error, got %v", err)
	}
	if !ok.closed || !failing.closed {
		t.Fatalf("expected every backend to be closed")
	}
}
