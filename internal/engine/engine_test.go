package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"pyconsole/internal/domain/console"
	"pyconsole/internal/domain/execution"
	"pyconsole/internal/mediator"
)

// programEvaluator stands in for a Python evaluator: it runs a Go function
// that plays the program, asking for input through resolve.
type programEvaluator struct {
	program func(resolve execution.InputResolver) (*execution.Outcome, error)
	calls   int
}

func (p *programEvaluator) Evaluate(ctx context.Context, source string, resolve execution.InputResolver) (*execution.Outcome, error) {
	p.calls++
	return p.program(resolve)
}

func (p *programEvaluator) Close() error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// greetProgram behaves like `name = input("Name: "); print(name)`.
func greetProgram(resolve execution.InputResolver) (*execution.Outcome, error) {
	name, ok := resolve("Name: ")
	if !ok {
		return &execution.Outcome{Termination: execution.TerminationAborted, Prompt: "Name: "}, nil
	}
	return &execution.Outcome{Termination: execution.TerminationCompleted, Stdout: name + "\n"}, nil
}

func TestExecutePrintSucceeds(t *testing.T) {
	t.Parallel()

	eval := &programEvaluator{program: func(execution.InputResolver) (*execution.Outcome, error) {
		return &execution.Outcome{Termination: execution.TerminationCompleted, Stdout: "hi\n"}, nil
	}}

	res := New(eval, quietLogger()).Execute(context.Background(), `print("hi")`, nil)
	if res.Kind != execution.KindSuccess || res.Stdout != "hi\n" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExecuteDivisionByZeroIsRuntimeError(t *testing.T) {
	t.Parallel()

	eval := &programEvaluator{program: func(execution.InputResolver) (*execution.Outcome, error) {
		return &execution.Outcome{
			Termination: execution.TerminationRaised,
			Diagnostic:  "ZeroDivisionError: division by zero",
		}, nil
	}}

	res := New(eval, quietLogger()).Execute(context.Background(), "x = 1/0", nil)
	if res.Kind != execution.KindRuntimeError {
		t.Fatalf("expected runtime error, got %q", res.Kind)
	}
	if !strings.Contains(res.Diagnostic, "division by zero") {
		t.Fatalf("unexpected diagnostic: %q", res.Diagnostic)
	}
}

func TestExecuteMissingInputThenSatisfied(t *testing.T) {
	t.Parallel()

	store := console.NewInputStore()
	eng := New(&programEvaluator{program: greetProgram}, quietLogger())
	source := `name = input("Name: "); print(name)`

	first := eng.Execute(context.Background(), source, mediator.New(store, nil).Resolve)
	if first.Kind != execution.KindMissingInput {
		t.Fatalf("expected missing input, got %+v", first)
	}
	if len(first.Pending) != 1 || first.Pending[0] != "Name: " {
		t.Fatalf("unexpected pending prompts: %v", first.Pending)
	}
	if value, ok := store.Lookup("Name: "); !ok || value != "" {
		t.Fatalf("expected empty entry for prompt, got %q (exists=%v)", value, ok)
	}

	second := eng.Execute(context.Background(), source, mediator.New(store, nil).Resolve)
	if second.Kind != first.Kind || len(second.Pending) != len(first.Pending) {
		t.Fatalf("expected identical result on unchanged state, got %+v", second)
	}

	store.Set("Name: ", "Ada")
	third := eng.Execute(context.Background(), source, mediator.New(store, nil).Resolve)
	if third.Kind != execution.KindSuccess || third.Stdout != "Ada\n" {
		t.Fatalf("unexpected result after supplying input: %+v", third)
	}
}

func TestExecuteNeverProceedsPastMissingPrompt(t *testing.T) {
	t.Parallel()

	var asked []string
	eval := &programEvaluator{program: func(resolve execution.InputResolver) (*execution.Outcome, error) {
		for _, prompt := range []string{"first", "second"} {
			if _, ok := resolve(prompt); !ok {
				asked = append(asked, prompt)
			}
		}
		// A misbehaving evaluator that claims completion anyway.
		return &execution.Outcome{Termination: execution.TerminationCompleted, Stdout: "leaked"}, nil
	}}

	res := New(eval, quietLogger()).Execute(context.Background(), "", func(string) (string, bool) {
		return "", false
	})
	if res.Kind != execution.KindMissingInput {
		t.Fatalf("expected missing input, got %+v", res)
	}
	if res.Stdout != "" {
		t.Fatalf("expected no output, got %q", res.Stdout)
	}
	if len(res.Pending) != 1 || res.Pending[0] != "first" {
		t.Fatalf("expected only the first prompt to be pending, got %v", res.Pending)
	}
}

func TestExecuteEvaluatorErrorBecomesRuntimeError(t *testing.T) {
	t.Parallel()

	eval := &programEvaluator{program: func(execution.InputResolver) (*execution.Outcome, error) {
		return nil, errors.New("python3 not found")
	}}

	res := New(eval, quietLogger()).Execute(context.Background(), "print(1)", nil)
	if res.Kind != execution.KindRuntimeError {
		t.Fatalf("expected runtime error, got %q", res.Kind)
	}
	if !strings.Contains(res.Diagnostic, "python3 not found") {
		t.Fatalf("unexpected diagnostic: %q", res.Diagnostic)
	}
}

func TestExecuteRecoversPanics(t *testing.T) {
	t.Parallel()

	eval := &programEvaluator{program: func(execution.InputResolver) (*execution.Outcome, error) {
		panic("boom")
	}}

	res := New(eval, quietLogger()).Execute(context.Background(), "", nil)
	if res.Kind != execution.KindRuntimeError || !strings.Contains(res.Diagnostic, "boom") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExecuteNilOutcome(t *testing.T) {
	t.Parallel()

	eval := &programEvaluator{program: func(execution.InputResolver) (*execution.Outcome, error) {
		return nil, nil
	}}

	res := New(eval, quietLogger()).Execute(context.Background(), "", nil)
	if res.Kind != execution.KindRuntimeError {
		t.Fatalf("expected runtime error for nil outcome, got %q", res.Kind)
	}
}

func TestExecuteWithoutEvaluator(t *testing.T) {
	t.Parallel()

	res := New(nil, quietLogger()).Execute(context.Background(), "", nil)
	if res.Kind != execution.KindRuntimeError {
		t.Fatalf("expected runtime error, got %q", res.Kind)
	}
}
