package ports

import (
	"context"

	"pyconsole/internal/domain/execution"
)

// Evaluator is the capability that runs console source text. Implementations
// route every input request through resolve and report how the program ended.
// The returned error covers evaluator failures only; program failures are
// described by the Outcome.
type Evaluator interface {
	Evaluate(ctx context.Context, source string, resolve execution.InputResolver) (*execution.Outcome, error)
	Close() error
}
