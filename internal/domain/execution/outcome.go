package execution

import "strings"

// InputResolver answers an interactive input request. It returns ok=false when
// no value is available yet, which aborts the running program.
type InputResolver func(prompt string) (value string, ok bool)

// Termination describes how an evaluated program stopped.
type Termination string

const (
	TerminationCompleted Termination = "completed"
	TerminationRaised    Termination = "raised"
	TerminationSyntax    Termination = "syntax"
	TerminationAborted   Termination = "aborted"
)

// Outcome is the raw report of an evaluator run before the console decision
// policy is applied.
type Outcome struct {
	Termination Termination
	Stdout      string
	Stderr      string
	// Diagnostic is the exception or compiler message for raised/syntax terminations.
	Diagnostic string
	// Prompt is the input request that caused an aborted termination.
	Prompt string
}

// Classify maps an Outcome onto a console Result.
//
// An abort always wins, then compile failures, then raised exceptions. A run
// that completed but wrote to stderr is a runtime error carrying the stderr
// text; stdout is kept on the Result but is not part of the diagnostic.
func Classify(o Outcome) Result {
	switch o.Termination {
	case TerminationAborted:
		return MissingInput(o.Prompt)
	case TerminationSyntax:
		return SyntaxError(diagnosticOrDefault(o.Diagnostic, "invalid syntax"))
	case TerminationRaised:
		res := RuntimeError(diagnosticOrDefault(o.Diagnostic, "program raised an exception"))
		res.Stdout = o.Stdout
		return res
	}

	if o.Stderr != "" {
		res := RuntimeError(o.Stderr)
		res.Stdout = o.Stdout
		return res
	}

	return Success(o.Stdout)
}

func diagnosticOrDefault(diagnostic, fallback string) string {
	if strings.TrimSpace(diagnostic) == "" {
		return fallback
	}
	return diagnostic
}
