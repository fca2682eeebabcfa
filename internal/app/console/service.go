// Package console coordinates interactive console sessions: it runs session
// source through the execution engine with input mediation, and serves the
// uploaded-script and package-installation features.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "pyconsole/internal/domain/console"
	"pyconsole/internal/domain/execution"
	"pyconsole/internal/engine"
	"pyconsole/internal/mediator"
	"pyconsole/internal/observability"
	"pyconsole/internal/ports"
)

const publishTimeout = 5 * time.Second

// RunRequest is one press of the Run control.
type RunRequest struct {
	// Source replaces the session source when non-nil.
	Source *string
	// Inputs holds the values currently entered in the UI, keyed by prompt.
	Inputs map[string]string
}

// Dependencies wires a Service.
type Dependencies struct {
	Evaluator ports.Evaluator
	Scripts   ports.ScriptRunner
	Installer ports.PackageInstaller
	// Publisher is optional.
	Publisher ports.ReportPublisher
	Sessions  *SessionStore
	Logger    *slog.Logger
}

// Service runs console sessions.
type Service struct {
	engine    *engine.Engine
	scripts   ports.ScriptRunner
	installer ports.PackageInstaller
	publisher ports.ReportPublisher
	sessions  *SessionStore
	logger    *slog.Logger
	now       func() time.Time

	installMu sync.Mutex
}

// NewService constructs a Service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Evaluator == nil {
		return nil, errors.New("console service: evaluator is required")
	}
	if deps.Scripts == nil {
		return nil, errors.New("console service: script runner is required")
	}
	if deps.Installer == nil {
		return nil, errors.New("console service: package installer is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewSessionStore(0)
	}

	return &Service{
		engine:    engine.New(deps.Evaluator, logger),
		scripts:   deps.Scripts,
		installer: deps.Installer,
		publisher: deps.Publisher,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Sessions returns the session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Run executes the session source once. The only error is a failure to take
// the session's execution slot before ctx ends; program failures are
// described by the returned Result.
func (s *Service) Run(ctx context.Context, sess *domain.Session, req RunRequest) (execution.Result, error) {
	release, err := sess.Acquire(ctx)
	if err != nil {
		return execution.Result{}, fmt.Errorf("acquire session %s: %w", sess.ID(), err)
	}
	defer release()

	if req.Source != nil {
		sess.SetSource(*req.Source)
	}
	source := sess.Source()

	med := mediator.New(sess.Inputs(), mediator.Values(req.Inputs))
	res := s.engine.Execute(ctx, source, med.Resolve)
	if res.Kind == execution.KindMissingInput {
		if pending := med.Pending(); len(pending) > 0 {
			res.Pending = pending
		}
	}

	sess.SetLast(res)
	sess.Touch(s.now())

	observability.ExecutionsTotal.WithLabelValues(string(res.Kind)).Inc()
	observability.ExecutionDuration.WithLabelValues(string(res.Kind)).Observe(res.Duration.Seconds())
	s.logger.Info("console run",
		"session", sess.ID(),
		"kind", res.Kind,
		"duration", res.Duration,
		"pending", len(res.Pending),
	)

	s.publish(ctx, "console", func(ctx context.Context) error {
		return s.publisher.PublishConsoleReport(ctx, execution.ConsoleReport{
			SessionID: sess.ID(),
			Source:    source,
			Result:    res,
			At:        s.now(),
		})
	})

	return res, nil
}

// Clear resets the session source, inputs and last result. It waits for any
// in-flight run of the session to finish first.
func (s *Service) Clear(ctx context.Context, sess *domain.Session) error {
	release, err := sess.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire session %s: %w", sess.ID(), err)
	}
	defer release()

	sess.Clear()
	sess.Touch(s.now())
	s.logger.Info("console cleared", "session", sess.ID())
	return nil
}

// RunScript executes an uploaded script headless.
func (s *Service) RunScript(ctx context.Context, script execution.Script) (*execution.ScriptResult, error) {
	if len(script.Source) > execution.MaxScriptBytes {
		return nil, fmt.Errorf("script %s exceeds %d bytes", script.Name, execution.MaxScriptBytes)
	}
	if script.ID == "" {
		script.ID = uuid.NewString()
	}

	res, err := s.scripts.RunScript(ctx, script)
	report := execution.RunReport{Script: script, Result: res, Err: err}
	s.publish(ctx, "run", func(ctx context.Context) error {
		return s.publisher.PublishRunReport(ctx, report)
	})

	if err != nil {
		s.logger.Error("script run failed", "script", script.Name, "id", script.ID, "error", err)
		return nil, err
	}

	observability.ScriptRunsTotal.WithLabelValues(string(res.Status)).Inc()
	s.logger.Info("script run",
		"script", script.Name,
		"id", script.ID,
		"status", res.Status,
		"exit_code", res.ExitCode,
		"duration", res.Duration,
	)
	return res, nil
}

// Install installs a package for subsequent runs. Installations are
// serialised.
func (s *Service) Install(ctx context.Context, sessionID, requirement string) (*execution.InstallResult, error) {
	s.installMu.Lock()
	res, err := s.installer.Install(ctx, requirement)
	s.installMu.Unlock()

	if errors.Is(err, execution.ErrInvalidPackage) {
		observability.PackageInstallsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	report := execution.InstallReport{SessionID: sessionID, Result: res, Err: err, At: s.now()}
	s.publish(ctx, "install", func(ctx context.Context) error {
		return s.publisher.PublishInstallReport(ctx, report)
	})

	if err != nil {
		observability.PackageInstallsTotal.WithLabelValues("error").Inc()
		s.logger.Error("package install failed", "package", requirement, "error", err)
		return nil, err
	}

	status := "ok"
	if !res.OK {
		status = "failed"
	}
	observability.PackageInstallsTotal.WithLabelValues(status).Inc()
	s.logger.Info("package install", "package", res.Package, "ok", res.OK, "exit_code", res.ExitCode)
	return res, nil
}

// publish delivers a report without failing the user-facing operation.
func (s *Service) publish(ctx context.Context, kind string, send func(context.Context) error) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := send(ctx); err != nil {
		observability.ReportPublishFailuresTotal.WithLabelValues(kind).Inc()
		s.logger.Warn("publish report", "report", kind, "error", err)
	}
}
