package ports

import (
	"context"

	"pyconsole/internal/domain/execution"
)

// ScriptRunner executes uploaded scripts out of process with empty stdin.
type ScriptRunner interface {
	RunScript(ctx context.Context, script execution.Script) (*execution.ScriptResult, error)
}
