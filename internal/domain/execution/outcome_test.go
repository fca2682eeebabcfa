package execution

import (
	"strings"
	"testing"
)

func TestClassifyCompletedWithoutStderrIsSuccess(t *testing.T) {
	t.Parallel()

	res := Classify(Outcome{Termination: TerminationCompleted, Stdout: "hi\n"})
	if res.Kind != KindSuccess {
		t.Fatalf("expected success, got %q", res.Kind)
	}
	if res.Stdout != "hi\n" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
	if !res.OK() {
		t.Fatalf("expected OK result")
	}
}

func TestClassifyStderrTakesPriorityOverStdout(t *testing.T) {
	t.Parallel()

	res := Classify(Outcome{
		Termination: TerminationCompleted,
		Stdout:      "partial\n",
		Stderr:      "warning: careful\n",
	})
	if res.Kind != KindRuntimeError {
		t.Fatalf("expected runtime error, got %q", res.Kind)
	}
	if res.Diagnostic != "warning: careful\n" {
		t.Fatalf("expected stderr as diagnostic, got %q", res.Diagnostic)
	}
	if res.Stdout != "partial\n" {
		t.Fatalf("expected stdout to be preserved, got %q", res.Stdout)
	}
}

func TestClassifyRaisedException(t *testing.T) {
	t.Parallel()

	res := Classify(Outcome{
		Termination: TerminationRaised,
		Stderr:      "ignored",
		Diagnostic:  "ZeroDivisionError: division by zero",
	})
	if res.Kind != KindRuntimeError {
		t.Fatalf("expected runtime error, got %q", res.Kind)
	}
	if !strings.Contains(res.Diagnostic, "division by zero") {
		t.Fatalf("unexpected diagnostic: %q", res.Diagnostic)
	}
}

func TestClassifySyntaxError(t *testing.T) {
	t.Parallel()

	res := Classify(Outcome{Termination: TerminationSyntax, Diagnostic: "SyntaxError: invalid syntax (line 1)"})
	if res.Kind != KindSyntaxError {
		t.Fatalf("expected syntax error, got %q", res.Kind)
	}

	res = Classify(Outcome{Termination: TerminationSyntax})
	if res.Diagnostic == "" {
		t.Fatalf("expected default diagnostic for empty syntax message")
	}
}

func TestClassifyAbortDiscardsOutput(t *testing.T) {
	t.Parallel()

	res := Classify(Outcome{
		Termination: TerminationAborted,
		Prompt:      "Name: ",
		Stdout:      "before\n",
		Stderr:      "noise",
	})
	if res.Kind != KindMissingInput {
		t.Fatalf("expected missing input, got %q", res.Kind)
	}
	if res.Diagnostic != "" || res.Stdout != "" {
		t.Fatalf("expected no diagnostic and no output, got %+v", res)
	}
	if len(res.Pending) != 1 || res.Pending[0] != "Name: " {
		t.Fatalf("unexpected pending prompts: %v", res.Pending)
	}
}

func TestKindIsFailure(t *testing.T) {
	t.Parallel()

	if KindSuccess.IsFailure() {
		t.Fatalf("success must not be a failure")
	}
	for _, kind := range []Kind{KindRuntimeError, KindSyntaxError, KindMissingInput} {
		if !kind.IsFailure() {
			t.Fatalf("%q must be a failure", kind)
		}
	}
}
