package local

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/runtime/harness"
)

// Evaluate implements ports.Evaluator by running the harness in a subprocess
// and answering its input requests over stdin.
func (b *Backend) Evaluate(ctx context.Context, source string, resolve execution.InputResolver) (*execution.Outcome, error) {
	dir, cleanup, err := b.workspace(harness.Files(source))
	if err != nil {
		return nil, err
	}
	defer cleanup()

	limit := b.cfg.DefaultLimits.TimeLimit
	runCtx, cancel := withTimeLimit(ctx, limit)
	defer cancel()

	cmd := b.command(runCtx, dir, harness.Command(b.cfg.Python))
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start python: %w", err)
	}

	outcome, convErr := harness.Converse(stdout, stdin, resolve)
	_ = stdin.Close()
	waitErr := b.reap(cmd)

	if convErr != nil {
		if timedOut(ctx, runCtx, limit) {
			return &execution.Outcome{
				Termination: execution.TerminationRaised,
				Diagnostic:  fmt.Sprintf("TimeoutError: execution exceeded %s", limit),
			}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w%s", convErr, exitDetail(waitErr, stderr.String()))
	}

	return outcome, nil
}

// reap waits for the process, killing it if it lingers after reporting.
func (b *Backend) reap(cmd *exec.Cmd) error {
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(exitGracePeriod):
		_ = cmd.Process.Kill()
		return <-done
	}
}

func exitDetail(waitErr error, stderr string) string {
	var parts []string
	if waitErr != nil {
		parts = append(parts, waitErr.Error())
	}
	if trimmed := strings.TrimSpace(stderr); trimmed != "" {
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return ""
	}
	return ": " + strings.Join(parts, ": ")
}
