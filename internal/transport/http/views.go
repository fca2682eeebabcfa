package http

import (
	"time"

	domain "pyconsole/internal/domain/console"
	"pyconsole/internal/domain/execution"
)

// resultView is the JSON and template form of an execution.Result.
type resultView struct {
	Kind       execution.Kind `json:"kind"`
	OK         bool           `json:"ok"`
	Stdout     string         `json:"stdout"`
	Diagnostic string         `json:"diagnostic,omitempty"`
	Pending    []string       `json:"pending,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// Display is the text shown to the user: output on success, the diagnostic
// on failure, nothing while input is missing.
func (v resultView) Display() string {
	switch v.Kind {
	case execution.KindSuccess:
		return v.Stdout
	case execution.KindMissingInput:
		return ""
	default:
		return v.Diagnostic
	}
}

func newResultView(res execution.Result) resultView {
	return resultView{
		Kind:       res.Kind,
		OK:         res.OK(),
		Stdout:     res.Stdout,
		Diagnostic: res.Diagnostic,
		Pending:    res.Pending,
		DurationMS: res.Duration.Milliseconds(),
	}
}

type sessionView struct {
	ID     string         `json:"id"`
	Source string         `json:"source"`
	Inputs []domain.Entry `json:"inputs"`
	Last   *resultView    `json:"last,omitempty"`
}

func newSessionView(sess *domain.Session) sessionView {
	view := sessionView{
		ID:     sess.ID(),
		Source: sess.Source(),
		Inputs: sess.Inputs().Entries(),
	}
	if last, ok := sess.Last(); ok {
		rv := newResultView(last)
		view.Last = &rv
	}
	return view
}

type scriptView struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Status     execution.Status `json:"status"`
	Stdout     string           `json:"stdout"`
	Stderr     string           `json:"stderr"`
	ExitCode   int64            `json:"exit_code"`
	DurationMS int64            `json:"duration_ms"`
}

func newScriptView(script execution.Script, res *execution.ScriptResult) scriptView {
	return scriptView{
		ID:         script.ID,
		Name:       script.Name,
		Status:     res.Status,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		ExitCode:   res.ExitCode,
		DurationMS: res.Duration.Milliseconds(),
	}
}

type installView struct {
	Package  string `json:"package"`
	OK       bool   `json:"ok"`
	Output   string `json:"output"`
	ExitCode int64  `json:"exit_code"`
}

func newInstallView(res *execution.InstallResult) installView {
	return installView{
		Package:  res.Package,
		OK:       res.OK,
		Output:   res.Output,
		ExitCode: res.ExitCode,
	}
}

type healthView struct {
	Status   string    `json:"status"`
	Backend  string    `json:"backend,omitempty"`
	Sessions int       `json:"sessions"`
	Time     time.Time `json:"time"`
}
