package execution

import "time"

// Kind tags the variant of a console Result.
type Kind string

const (
	// KindSuccess means the program ran to completion without writing to stderr.
	KindSuccess Kind = "success"
	// KindRuntimeError covers exceptions raised by the program, anything it wrote
	// to stderr, and failures of the evaluator itself.
	KindRuntimeError Kind = "runtime_error"
	// KindSyntaxError means the source text did not compile.
	KindSyntaxError Kind = "syntax_error"
	// KindMissingInput means the program asked for a value the UI has not supplied yet.
	KindMissingInput Kind = "missing_input"
)

// IsFailure reports whether the kind is one of the failure variants.
func (k Kind) IsFailure() bool {
	return k != KindSuccess
}

// Result is the outcome of one console execution attempt.
//
// Stdout is the captured standard output. For runtime errors it still holds
// whatever the program printed before failing, but callers display only the
// Diagnostic in that case. Pending lists the prompts still waiting for a value
// when Kind is KindMissingInput.
type Result struct {
	Kind       Kind
	Stdout     string
	Diagnostic string
	Pending    []string
	Duration   time.Duration
}

// OK reports whether the execution succeeded.
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

// Success builds a success Result.
func Success(stdout string) Result {
	return Result{Kind: KindSuccess, Stdout: stdout}
}

// RuntimeError builds a runtime failure carrying diagnostic.
func RuntimeError(diagnostic string) Result {
	return Result{Kind: KindRuntimeError, Diagnostic: diagnostic}
}

// SyntaxError builds a compile failure carrying diagnostic.
func SyntaxError(diagnostic string) Result {
	return Result{Kind: KindSyntaxError, Diagnostic: diagnostic}
}

// MissingInput builds an aborted Result waiting on the given prompts.
func MissingInput(pending ...string) Result {
	return Result{Kind: KindMissingInput, Pending: append([]string(nil), pending...)}
}
