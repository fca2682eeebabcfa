package http

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"

	"pyconsole/internal/app/console"
	"pyconsole/internal/domain/execution"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// greetEvaluator behaves like `print("Hello " + input("Name?"))` unless the
// source is "boom" or "def", which fail at run time and compile time.
type greetEvaluator struct{}

func (greetEvaluator) Evaluate(_ context.Context, source string, resolve execution.InputResolver) (*execution.Outcome, error) {
	switch source {
	case "boom":
		return &execution.Outcome{Termination: execution.TerminationRaised, Diagnostic: "ZeroDivisionError: division by zero"}, nil
	case "def":
		return &execution.Outcome{Termination: execution.TerminationSyntax, Diagnostic: "SyntaxError: invalid syntax"}, nil
	}
	name, ok := resolve("Name?")
	if !ok {
		return &execution.Outcome{Termination: execution.TerminationAborted, Prompt: "Name?"}, nil
	}
	return &execution.Outcome{Termination: execution.TerminationCompleted, Stdout: "Hello " + name + "\n"}, nil
}

func (greetEvaluator) Close() error { return nil }

type echoScripts struct{}

func (echoScripts) RunScript(_ context.Context, script execution.Script) (*execution.ScriptResult, error) {
	return &execution.ScriptResult{Status: execution.StatusOK, Stdout: script.Source}, nil
}

type okInstaller struct{}

func (okInstaller) Install(_ context.Context, requirement string) (*execution.InstallResult, error) {
	name, err := execution.ValidatePackageName(requirement)
	if err != nil {
		return nil, err
	}
	return &execution.InstallResult{Package: name, OK: true, Output: "Successfully installed " + name}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *console.Service) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := console.NewService(console.Dependencies{
		Evaluator: greetEvaluator{},
		Scripts:   echoScripts{},
		Installer: okInstaller{},
		Sessions:  console.NewSessionStore(0),
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	router := NewRouter(Config{
		Console:        svc,
		Logger:         logger,
		Backend:        "fake",
		MetricsPath:    "/metrics",
		MaxUploadBytes: 64,
	})
	return router, svc
}
