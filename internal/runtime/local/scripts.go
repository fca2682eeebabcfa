package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/runtime/harness"
)

const defaultScriptFilename = "script.py"

// RunScript implements ports.ScriptRunner. The script runs headless with an
// empty stdin, so calls to input() fail with EOFError.
func (b *Backend) RunScript(ctx context.Context, script execution.Script) (*execution.ScriptResult, error) {
	name := scriptFilename(script.Name)
	dir, cleanup, err := b.workspace([]harness.File{{Name: name, Data: []byte(script.Source)}})
	if err != nil {
		return nil, err
	}
	defer cleanup()

	limits := b.cfg.DefaultLimits.Merge(script.Limits)
	runCtx, cancel := withTimeLimit(ctx, limits.TimeLimit)
	defer cancel()

	cmd := b.command(runCtx, dir, []string{b.cfg.Python, name})
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result := &execution.ScriptResult{
		Status:   execution.StatusOK,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr == nil {
		return result, nil
	}

	if timedOut(ctx, runCtx, limits.TimeLimit) {
		result.Status = execution.StatusTimeLimit
		result.ExitCode = -1
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = int64(exitErr.ExitCode())
		result.Status = execution.StatusForExit(result.ExitCode)
		return result, nil
	}

	return nil, fmt.Errorf("run script: %w", runErr)
}

func scriptFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" || strings.HasPrefix(base, ".") {
		return defaultScriptFilename
	}
	if !strings.HasSuffix(base, ".py") {
		base += ".py"
	}
	if base == harness.ScriptFilename {
		return defaultScriptFilename
	}
	return base
}
