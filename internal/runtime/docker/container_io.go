package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"pyconsole/internal/runtime/harness"
)

const (
	// maxCapturedOutput caps each log stream read back from a container.
	maxCapturedOutput = 4 << 20

	stopTimeout     = 5 * time.Second
	stopWaitTimeout = 15 * time.Second
)

// uploadWorkspace copies files into workdir of a created container.
func (c *containerEngine) uploadWorkspace(ctx context.Context, containerID, workdir string, files []harness.File) error {
	if len(files) == 0 {
		return nil
	}

	archive, err := tarWorkspace(files, time.Now())
	if err != nil {
		return err
	}
	return c.cli.CopyToContainer(ctx, containerID, workdir, archive, container.CopyToContainerOptions{AllowOverwriteDirWithFile: true})
}

func tarWorkspace(files []harness.File, modTime time.Time) (*bytes.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for _, file := range files {
		mode := file.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     file.Name,
			Mode:     mode,
			Size:     int64(len(file.Data)),
			ModTime:  modTime,
		}); err != nil {
			return nil, fmt.Errorf("archive %s: %w", file.Name, err)
		}
		if _, err := tw.Write(file.Data); err != nil {
			return nil, fmt.Errorf("archive %s: %w", file.Name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// stopTimedOut stops a container that overran its time limit and returns
// its exit code, or -1 when it did not report one in time.
func (c *containerEngine) stopTimedOut(containerID string) (int64, error) {
	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopTimeout)
	defer cancelStop()

	if err := c.cli.ContainerStop(stopCtx, containerID, container.StopOptions{}); err != nil && !client.IsErrNotFound(err) {
		return 0, fmt.Errorf("stop container after time limit: %w", err)
	}

	waitCtx, cancelWait := context.WithTimeout(context.Background(), stopWaitTimeout)
	defer cancelWait()

	status, err := c.awaitExit(waitCtx, containerID)
	if err != nil {
		return -1, nil
	}
	return status.StatusCode, nil
}

func (c *containerEngine) awaitExit(ctx context.Context, containerID string) (container.WaitResponse, error) {
	statusCh, errCh := c.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		if status.Error != nil {
			return container.WaitResponse{}, fmt.Errorf("container error: %s", status.Error.Message)
		}
		return status, nil
	case err := <-errCh:
		return container.WaitResponse{}, fmt.Errorf("wait for container: %w", err)
	case <-ctx.Done():
		return container.WaitResponse{}, fmt.Errorf("wait for container: %w", ctx.Err())
	}
}

// collectOutput demultiplexes the container logs into stdout and stderr.
func (c *containerEngine) collectOutput(ctx context.Context, containerID string) (stdout, stderr string, err error) {
	logs, err := c.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", fmt.Errorf("container logs: %w", err)
	}
	defer logs.Close()

	out := &cappedBuffer{limit: maxCapturedOutput}
	errOut := &cappedBuffer{limit: maxCapturedOutput}
	if _, err := stdcopy.StdCopy(out, errOut, logs); err != nil {
		return "", "", fmt.Errorf("demultiplex logs: %w", err)
	}
	return out.String(), errOut.String(), nil
}

// cappedBuffer keeps the first limit bytes written to it and discards the
// rest, noting the truncation.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room < len(p) {
		b.truncated = true
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n[output truncated]\n"
	}
	return b.buf.String()
}
