package runtime

import (
	"pyconsole/internal/ports"
)

// Backend bundles everything a Python runtime offers the console: interactive
// evaluation, headless script runs and package installation.
type Backend interface {
	ports.Evaluator
	ports.ScriptRunner
	ports.PackageInstaller
	Name() string
}
