// Package engine executes console source text and turns whatever happens
// into a console Result. Execute never fails: evaluator errors, panics and
// aborted input requests all come back as Result values.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/ports"
)

// Engine runs source text through an Evaluator.
type Engine struct {
	evaluator ports.Evaluator
	logger    *slog.Logger
}

// New constructs an Engine. A nil logger falls back to slog.Default.
func New(evaluator ports.Evaluator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{evaluator: evaluator, logger: logger}
}

// Execute evaluates source, routing input requests through resolve.
//
// Once resolve reports a value as unavailable the attempt is over: later
// requests are refused as well and the result is KindMissingInput whatever
// the evaluator reports afterwards.
func (e *Engine) Execute(ctx context.Context, source string, resolve execution.InputResolver) (res execution.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "evaluator panicked", "panic", fmt.Sprint(r))
			res = execution.RuntimeError(fmt.Sprintf("internal error: %v", r))
		}
		res.Duration = time.Since(start)
	}()

	if e.evaluator == nil {
		return execution.RuntimeError("no evaluator configured")
	}

	guard := newAbortGuard(resolve)
	outcome, err := e.evaluator.Evaluate(ctx, source, guard.resolve)

	if prompt, aborted := guard.aborted(); aborted {
		return execution.MissingInput(prompt)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			e.logger.WarnContext(ctx, "evaluation interrupted", "error", err)
			return execution.RuntimeError(fmt.Sprintf("execution interrupted: %v", err))
		}
		e.logger.ErrorContext(ctx, "evaluation failed", "error", err)
		return execution.RuntimeError(fmt.Sprintf("execution failed: %v", err))
	}
	if outcome == nil {
		return execution.RuntimeError("execution failed: evaluator returned no outcome")
	}

	return execution.Classify(*outcome)
}

type abortGuard struct {
	next execution.InputResolver

	mu      sync.Mutex
	stopped bool
	prompt  string
}

func newAbortGuard(next execution.InputResolver) *abortGuard {
	return &abortGuard{next: next}
}

func (g *abortGuard) resolve(prompt string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return "", false
	}
	if g.next == nil {
		g.stopped, g.prompt = true, prompt
		return "", false
	}

	value, ok := g.next(prompt)
	if !ok {
		g.stopped, g.prompt = true, prompt
		return "", false
	}
	return value, true
}

func (g *abortGuard) aborted() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompt, g.stopped
}
