package docker

import "pyconsole/internal/domain/execution"

const (
	defaultImage          = "python:3.12-slim"
	defaultWorkdir        = "/tmp"
	defaultPython         = "python"
	defaultPackagesVolume = "pyconsole-packages"
	defaultPackagesPath   = "/opt/pyconsole/packages"
	defaultNanoCPUs       = 1_000_000_000
)

// Config describes how to create a Docker-backed runtime.
type Config struct {
	// Image is the Python image used for console runs, scripts and installs.
	Image string
	// Workdir is the directory programs are copied into.
	Workdir string
	// Python is the interpreter binary inside the image.
	Python string
	// PackagesVolume is the named volume installed packages are written to.
	// It is mounted read-only into every console and script container.
	PackagesVolume string
	// PackagesPath is where PackagesVolume is mounted.
	PackagesPath string
	// NetworkMode applies to console and script containers. Installs always
	// use the default network.
	NetworkMode string
	// NanoCPUs caps CPU usage per container.
	NanoCPUs int64
	// DefaultLimits apply to every run unless a script overrides them.
	DefaultLimits execution.RunLimits
}

func (c Config) withDefaults() Config {
	if c.Image == "" {
		c.Image = defaultImage
	}
	if c.Workdir == "" {
		c.Workdir = defaultWorkdir
	}
	if c.Python == "" {
		c.Python = defaultPython
	}
	if c.PackagesVolume == "" {
		c.PackagesVolume = defaultPackagesVolume
	}
	if c.PackagesPath == "" {
		c.PackagesPath = defaultPackagesPath
	}
	if c.NanoCPUs <= 0 {
		c.NanoCPUs = defaultNanoCPUs
	}
	c.DefaultLimits = c.DefaultLimits.Normalize()
	return c
}
