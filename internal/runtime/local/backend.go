// Package local runs console programs with the host Python interpreter.
package local

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"pyconsole/internal/runtime"
	"pyconsole/internal/runtime/harness"
)

// Name is the registry name of the host backend.
const Name = "local"

// Backend implements runtime.Backend with subprocesses of the host interpreter.
type Backend struct {
	cfg Config
}

var _ runtime.Backend = (*Backend)(nil)

// New constructs a Backend. It fails when the interpreter cannot be found.
func New(cfg Config) (*Backend, error) {
	cfg = cfg.withDefaults()
	if _, err := exec.LookPath(cfg.Python); err != nil {
		return nil, fmt.Errorf("local runtime: python interpreter %q: %w", cfg.Python, err)
	}
	return &Backend{cfg: cfg}, nil
}

// Name implements runtime.Backend.
func (b *Backend) Name() string {
	return Name
}

// Close implements runtime.Backend. The host backend holds no resources.
func (b *Backend) Close() error {
	return nil
}

func (b *Backend) workspace(files []harness.File) (string, func(), error) {
	dir, err := os.MkdirTemp(b.cfg.Workdir, "pyconsole-run-")
	if err != nil {
		return "", func() {}, fmt.Errorf("create workspace: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(dir)
	}

	for _, file := range files {
		mode := os.FileMode(file.Mode)
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(filepath.Join(dir, file.Name), file.Data, mode); err != nil {
			cleanup()
			return "", func() {}, fmt.Errorf("write %s: %w", file.Name, err)
		}
	}

	return dir, cleanup, nil
}

func (b *Backend) command(ctx context.Context, dir string, argv []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), b.cfg.Env...)
	cmd.WaitDelay = exitGracePeriod
	return cmd
}

func withTimeLimit(ctx context.Context, limit time.Duration) (context.Context, context.CancelFunc) {
	if limit > 0 {
		return context.WithTimeout(ctx, limit)
	}
	return context.WithCancel(ctx)
}

// timedOut reports whether runCtx ended because of the time limit rather than
// a cancellation of the caller's context.
func timedOut(parent, runCtx context.Context, limit time.Duration) bool {
	return limit > 0 && runCtx.Err() == context.DeadlineExceeded && parent.Err() == nil
}
