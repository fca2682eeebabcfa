package local

import (
	"time"

	"pyconsole/internal/domain/execution"
)

const (
	defaultPython = "python3"
	// exitGracePeriod bounds how long a process may linger after it reported
	// its result, e.g. while non-daemon threads finish.
	exitGracePeriod = 5 * time.Second
)

// Config describes how to run Python on the host.
type Config struct {
	// Python is the interpreter binary. Defaults to python3.
	Python string
	// Workdir is the parent directory for per-run temporary directories.
	// Defaults to the system temp dir.
	Workdir string
	// Env is appended to the server environment for every run.
	Env []string
	// InstallCommand is the package manager invocation; the requirement is
	// appended as the last argument. Defaults to "<python> -m pip install".
	InstallCommand []string
	// DefaultLimits apply to every run unless a script overrides them.
	DefaultLimits execution.RunLimits
}

func (c Config) withDefaults() Config {
	if c.Python == "" {
		c.Python = defaultPython
	}
	if len(c.InstallCommand) == 0 {
		c.InstallCommand = []string{c.Python, "-m", "pip", "install", "--disable-pip-version-check", "--no-input"}
	}
	c.DefaultLimits = c.DefaultLimits.Normalize()
	return c
}
