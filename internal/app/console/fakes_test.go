package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"pyconsole/internal/domain/execution"
)

type programEvaluator struct {
	mu      sync.Mutex
	sources []string
	program func(source string, resolve execution.InputResolver) (*execution.Outcome, error)
}

func (p *programEvaluator) Evaluate(ctx context.Context, source string, resolve execution.InputResolver) (*execution.Outcome, error) {
	p.mu.Lock()
	p.sources = append(p.sources, source)
	p.mu.Unlock()
	return p.program(source, resolve)
}

func (p *programEvaluator) Close() error { return nil }

// greetProgram behaves like `print("Hello " + input("Name?"))`.
func greetProgram(_ string, resolve execution.InputResolver) (*execution.Outcome, error) {
	name, ok := resolve("Name?")
	if !ok {
		return &execution.Outcome{Termination: execution.TerminationAborted, Prompt: "Name?"}, nil
	}
	return &execution.Outcome{Termination: execution.TerminationCompleted, Stdout: "Hello " + name + "\n"}, nil
}

type fakeScripts struct {
	scripts []execution.Script
	result  *execution.ScriptResult
	err     error
}

func (f *fakeScripts) RunScript(ctx context.Context, script execution.Script) (*execution.ScriptResult, error) {
	f.scripts = append(f.scripts, script)
	return f.result, f.err
}

type fakeInstaller struct {
	requests []string
}

func (f *fakeInstaller) Install(ctx context.Context, requirement string) (*execution.InstallResult, error) {
	f.requests = append(f.requests, requirement)
	name, err := execution.ValidatePackageName(requirement)
	if err != nil {
		return nil, err
	}
	return &execution.InstallResult{Package: name, OK: true, Output: "Successfully installed " + name}, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	runs     []execution.RunReport
	consoles []execution.ConsoleReport
	installs []execution.InstallReport
	err      error
}

func (r *recordingPublisher) PublishRunReport(ctx context.Context, report execution.RunReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, report)
	return r.err
}

func (r *recordingPublisher) PublishConsoleReport(ctx context.Context, report execution.ConsoleReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consoles = append(r.consoles, report)
	return r.err
}

func (r *recordingPublisher) PublishInstallReport(ctx context.Context, report execution.InstallReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installs = append(r.installs, report)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

var errBrokerDown = errors.New("broker down")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(evaluator *programEvaluator, publisher *recordingPublisher) (*Service, *fakeScripts, *fakeInstaller) {
	scripts := &fakeScripts{result: &execution.ScriptResult{Status: execution.StatusOK, Stdout: "ok\n"}}
	installer := &fakeInstaller{}
	deps := Dependencies{
		Evaluator: evaluator,
		Scripts:   scripts,
		Installer: installer,
		Sessions:  NewSessionStore(0),
		Logger:    quietLogger(),
	}
	if publisher != nil {
		deps.Publisher = publisher
	}
	svc, err := NewService(deps)
	if err != nil {
		panic(err)
	}
	return svc, scripts, installer
}
