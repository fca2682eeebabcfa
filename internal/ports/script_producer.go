package ports

import (
	"context"

	"pyconsole/internal/domain/execution"
)

// ScriptProducer provides scripts for headless batch execution. NextScript
// returns io.EOF once the stream is exhausted.
type ScriptProducer interface {
	NextScript(ctx context.Context) (execution.Script, error)
}
