// Package backends builds the runtime registry from configuration.
package backends

import (
	"errors"
	"fmt"

	"pyconsole/internal/config"
	"pyconsole/internal/runtime"
	"pyconsole/internal/runtime/docker"
	"pyconsole/internal/runtime/local"
)

// Open registers every backend that can be constructed and returns the one
// selected by cfg.Backend. Construction errors of the other backends are
// only reported when the selected one is missing. The caller closes the
// registry.
func Open(cfg config.RuntimeConfig) (*runtime.Registry, runtime.Backend, error) {
	var (
		available []runtime.Backend
		failures  []error
	)

	localBackend, err := local.New(local.Config{
		Python:        cfg.Local.Python,
		Workdir:       cfg.Local.Workdir,
		DefaultLimits: cfg.Limits(),
	})
	if err != nil {
		failures = append(failures, err)
	} else {
		available = append(available, localBackend)
	}

	dockerBackend, err := docker.New(docker.Config{
		Image:          cfg.Docker.Image,
		Workdir:        cfg.Docker.Workdir,
		PackagesVolume: cfg.Docker.PackagesVolume,
		NetworkMode:    cfg.Docker.NetworkMode,
		DefaultLimits:  cfg.Limits(),
	})
	if err != nil {
		failures = append(failures, err)
	} else {
		available = append(available, dockerBackend)
	}

	if len(available) == 0 {
		return nil, nil, fmt.Errorf("no runtime backend available: %w", errors.Join(failures...))
	}

	registry, err := runtime.NewRegistry(available...)
	if err != nil {
		return nil, nil, err
	}

	backend, err := registry.Backend(cfg.Backend)
	if err != nil {
		_ = registry.Close()
		return nil, nil, errors.Join(append([]error{err}, failures...)...)
	}
	return registry, backend, nil
}
