package docker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	typesimage "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/runtime/harness"
)

// containerSpec describes a single container run.
type containerSpec struct {
	image       string
	workdir     string
	cmd         []string
	env         []string
	limits      execution.RunLimits
	networkMode string
	mounts      []mount.Mount
	interactive bool
}

type containerEngine struct {
	cli           dockerClient
	defaultLimits execution.RunLimits
	nanoCPUs      int64
}

func newContainerEngine(cli dockerClient, defaultLimits execution.RunLimits, nanoCPUs int64) *containerEngine {
	return &containerEngine{
		cli:           cli,
		defaultLimits: defaultLimits.Normalize(),
		nanoCPUs:      nanoCPUs,
	}
}

func (c *containerEngine) pullImage(ctx context.Context, ref string) error {
	reader, err := c.cli.ImagePull(ctx, ref, typesimage.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	defer reader.Close()
	_, err = io.Copy(io.Discard, reader)
	if err != nil {
		return fmt.Errorf("consume pull output for %s: %w", ref, err)
	}
	return nil
}

func (c *containerEngine) effectiveLimits(request execution.RunLimits) execution.RunLimits {
	return c.defaultLimits.Merge(request)
}

// runProgram runs a container to completion without stdin and collects its
// logs once it exits.
func (c *containerEngine) runProgram(ctx context.Context, spec containerSpec, files []harness.File) (*execution.ScriptResult, error) {
	spec.limits = c.effectiveLimits(spec.limits)
	spec.interactive = false

	containerID, cleanup, err := c.createContainer(ctx, spec)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := c.uploadWorkspace(ctx, containerID, spec.workdir, files); err != nil {
		return nil, fmt.Errorf("copy files: %w", err)
	}

	start := time.Now()
	if err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	waitCtx, cancel := withTimeLimit(ctx, spec.limits.TimeLimit)
	status, err := c.awaitExit(waitCtx, containerID)
	cancel()

	result := &execution.ScriptResult{Status: execution.StatusForExit(status.StatusCode), ExitCode: status.StatusCode}
	switch {
	case err == nil:
	case timedOut(ctx, waitCtx, spec.limits.TimeLimit):
		exitCode, stopErr := c.stopTimedOut(containerID)
		if stopErr != nil {
			return nil, stopErr
		}
		result.Status = execution.StatusTimeLimit
		result.ExitCode = exitCode
	default:
		return nil, err
	}
	result.Duration = time.Since(start)

	// Logs and state are read even when ctx has ended so a timed-out run
	// still reports its partial output.
	readCtx := context.WithoutCancel(ctx)

	if result.Status != execution.StatusTimeLimit {
		inspect, err := c.cli.ContainerInspect(readCtx, containerID)
		if err != nil {
			return nil, fmt.Errorf("inspect container: %w", err)
		}
		if oomKilled(inspect) {
			result.Status = execution.StatusMemoryLimit
		}
	}

	result.Stdout, result.Stderr, err = c.collectOutput(readCtx, containerID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *containerEngine) createContainer(ctx context.Context, spec containerSpec) (string, func(), error) {
	hostConfig := &container.HostConfig{
		Resources: container.Resources{
			NanoCPUs: c.nanoCPUs,
		},
		Mounts: spec.mounts,
	}
	if spec.networkMode != "" {
		hostConfig.NetworkMode = container.NetworkMode(spec.networkMode)
	}
	if spec.limits.MemoryLimitBytes > 0 {
		hostConfig.Resources.Memory = spec.limits.MemoryLimitBytes
		hostConfig.Resources.MemorySwap = spec.limits.MemoryLimitBytes
	}

	resp, err := c.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:        spec.image,
			Cmd:          spec.cmd,
			Env:          spec.env,
			AttachStdout: true,
			AttachStderr: true,
			AttachStdin:  spec.interactive,
			OpenStdin:    spec.interactive,
			StdinOnce:    spec.interactive,
			WorkingDir:   spec.workdir,
		},
		hostConfig,
		nil,
		nil,
		"",
	)
	if err != nil {
		return "", nil, fmt.Errorf("create container: %w", err)
	}

	cleanup := func() {
		_ = c.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})
	}

	return resp.ID, cleanup, nil
}

func oomKilled(inspect container.InspectResponse) bool {
	return inspect.ContainerJSONBase != nil && inspect.State != nil && inspect.State.OOMKilled
}
