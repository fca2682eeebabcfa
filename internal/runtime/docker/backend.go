// Package docker runs console programs inside Python containers.
package docker

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/runtime"
	"pyconsole/internal/runtime/harness"
)

// Name is the registry name of the container backend.
const Name = "docker"

const defaultScriptFilename = "script.py"

// Backend implements runtime.Backend backed by Docker containers.
type Backend struct {
	cfg    Config
	client dockerClient
	engine *containerEngine
	images *imageCache
}

var _ runtime.Backend = (*Backend)(nil)

// New constructs a Backend using the Docker environment configuration.
func New(cfg Config) (*Backend, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker runtime: create client: %w", err)
	}

	return newBackendWithClient(cli, cfg), nil
}

func newBackendWithClient(cli dockerClient, cfg Config) *Backend {
	cfg = cfg.withDefaults()
	engine := newContainerEngine(cli, cfg.DefaultLimits, cfg.NanoCPUs)
	return &Backend{
		cfg:    cfg,
		client: cli,
		engine: engine,
		images: newImageCache(engine),
	}
}

// Name implements runtime.Backend.
func (b *Backend) Name() string {
	return Name
}

// Evaluate implements ports.Evaluator.
func (b *Backend) Evaluate(ctx context.Context, source string, resolve execution.InputResolver) (*execution.Outcome, error) {
	if err := b.images.ensureImage(ctx, b.cfg.Image); err != nil {
		return nil, err
	}

	spec := b.programSpec(harness.Command(b.cfg.Python))
	return b.engine.converse(ctx, spec, harness.Files(source), resolve)
}

// RunScript implements ports.ScriptRunner.
func (b *Backend) RunScript(ctx context.Context, script execution.Script) (*execution.ScriptResult, error) {
	if err := b.images.ensureImage(ctx, b.cfg.Image); err != nil {
		return nil, err
	}

	name := scriptFilename(script.Name)
	spec := b.programSpec([]string{b.cfg.Python, name})
	spec.limits = script.Limits

	return b.engine.runProgram(ctx, spec, []harness.File{{Name: name, Mode: 0o644, Data: []byte(script.Source)}})
}

// Install implements ports.PackageInstaller by running pip in a container
// that writes into the shared packages volume.
func (b *Backend) Install(ctx context.Context, requirement string) (*execution.InstallResult, error) {
	name, err := execution.ValidatePackageName(requirement)
	if err != nil {
		return nil, err
	}
	if err := b.images.ensureImage(ctx, b.cfg.Image); err != nil {
		return nil, err
	}

	spec := containerSpec{
		image:   b.cfg.Image,
		workdir: b.cfg.Workdir,
		cmd: []string{
			b.cfg.Python, "-m", "pip", "install",
			"--disable-pip-version-check", "--no-input", "--upgrade",
			"--target", b.cfg.PackagesPath,
			name,
		},
		mounts: []mount.Mount{b.packagesMount(false)},
	}

	res, err := b.engine.runProgram(ctx, spec, nil)
	if err != nil {
		return nil, err
	}

	return &execution.InstallResult{
		Package:  name,
		OK:       res.Status == execution.StatusOK,
		Output:   res.Stdout + res.Stderr,
		ExitCode: res.ExitCode,
	}, nil
}

// Close releases the Docker client.
func (b *Backend) Close() error {
	var errs []error
	if err := b.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("docker client: %w", err))
	}
	return errors.Join(errs...)
}

func (b *Backend) programSpec(cmd []string) containerSpec {
	return containerSpec{
		image:       b.cfg.Image,
		workdir:     b.cfg.Workdir,
		cmd:         cmd,
		env:         []string{"PYTHONPATH=" + b.cfg.PackagesPath, "PYTHONUNBUFFERED=1"},
		networkMode: b.cfg.NetworkMode,
		mounts:      []mount.Mount{b.packagesMount(true)},
	}
}

func (b *Backend) packagesMount(readOnly bool) mount.Mount {
	return mount.Mount{
		Type:     mount.TypeVolume,
		Source:   b.cfg.PackagesVolume,
		Target:   b.cfg.PackagesPath,
		ReadOnly: readOnly,
	}
}

func scriptFilename(name string) string {
	base := path.Base(strings.TrimSpace(strings.ReplaceAll(name, "\\", "/")))
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
