package docker

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/runtime/harness"
)

// converse runs the harness in a container with stdin attached and answers
// its input requests through resolve.
func (c *containerEngine) converse(ctx context.Context, spec containerSpec, files []harness.File, resolve execution.InputResolver) (*execution.Outcome, error) {
	spec.limits = c.effectiveLimits(spec.limits)
	spec.interactive = true

	containerID, cleanup, err := c.createContainer(ctx, spec)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := c.uploadWorkspace(ctx, containerID, spec.workdir, files); err != nil {
		return nil, fmt.Errorf("copy files: %w", err)
	}

	attach, err := c.cli.ContainerAttach(ctx, containerID, container.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("attach container: %w", err)
	}
	defer attach.Close()

	runCtx, cancel := withTimeLimit(ctx, spec.limits.TimeLimit)
	defer cancel()
	stopOnDone := context.AfterFunc(runCtx, attach.Close)
	defer stopOnDone()

	if err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	stdoutReader, stdoutWriter := io.Pipe()
	stderr := &cappedBuffer{limit: maxCapturedOutput}
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, err := stdcopy.StdCopy(stdoutWriter, stderr, attach.Reader)
		_ = stdoutWriter.CloseWithError(err)
	}()

	outcome, convErr := harness.Converse(stdoutReader, attach.Conn, resolve)
	_ = attach.CloseWrite()
	_ = stdoutReader.Close()
	attach.Close()
	<-copyDone

	if convErr == nil {
		return outcome, nil
	}

	if timedOut(ctx, runCtx, spec.limits.TimeLimit) {
		return &execution.Outcome{
			Termination: execution.TerminationRaised,
			Diagnostic:  fmt.Sprintf("TimeoutError: execution exceeded %s", spec.limits.TimeLimit),
		}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if inspect, err := c.cli.ContainerInspect(context.Background(), containerID); err == nil && oomKilled(inspect) {
		return &execution.Outcome{
			Termination: execution.TerminationRaised,
			Diagnostic:  fmt.Sprintf("MemoryError: container exceeded %d bytes", spec.limits.MemoryLimitBytes),
		}, nil
	}

	if detail := strings.TrimSpace(stderr.String()); detail != "" {
		return nil, fmt.Errorf("%w: %s", convErr, detail)
	}
	return nil, convErr
}

func withTimeLimit(ctx context.Context, limit time.Duration) (context.Context, context.CancelFunc) {
	if limit > 0 {
		return context.WithTimeout(ctx, limit)
	}
	return context.WithCancel(ctx)
}

func timedOut(parent, runCtx context.Context, limit time.Duration) bool {
	return limit > 0 && runCtx.Err() == context.DeadlineExceeded && parent.Err() == nil
}
