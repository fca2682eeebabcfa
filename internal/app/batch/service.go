// Package batch runs streams of scripts headless, outside any console session.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"pyconsole/internal/domain/execution"
	"pyconsole/internal/ports"
)

// Service coordinates headless script execution through a ScriptRunner.
type Service struct {
	runner ports.ScriptRunner
}

// NewService constructs a Service with the provided runner dependency.
func NewService(runner ports.ScriptRunner) *Service {
	return &Service{runner: runner}
}

// ExecuteFromProducer pulls scripts from the supplied producer and runs them with bounded parallelism.
//
// If maxScripts is greater than zero the execution stops after the specified
// number of scripts has been processed. Otherwise it keeps consuming until the
// context is cancelled or the producer signals completion via io.EOF.
//
// When onReport is provided it is invoked after every script execution with
// the corresponding run report.
func (s *Service) ExecuteFromProducer(
	ctx context.Context,
	producer ports.ScriptProducer,
	maxScripts int,
	maxParallel int,
	onReport func(execution.RunReport),
) error {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallel)
	processed := 0

	finish := func(err error) error {
		wg.Wait()
		return err
	}

	for {
		if maxScripts > 0 && processed >= maxScripts {
			return finish(nil)
		}

		script, err := producer.NextScript(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return finish(nil)
			}

			return finish(fmt.Errorf("get next script: %w", err))
		}

		sem <- struct{}{}
		wg.Add(1)
		processed++
		go func(script execution.Script) {
			defer wg.Done()
			defer func() { <-sem }()

			report := s.runScript(ctx, script)
			if onReport != nil {
				onReport(report)
			}
		}(script)
	}
}

func (s *Service) runScript(ctx context.Context, script execution.Script) execution.RunReport {
	if len(script.Source) > execution.MaxScriptBytes {
		return execution.RunReport{
			Script: script,
			Err:    fmt.Errorf("script %s exceeds %d bytes", script.ID, execution.MaxScriptBytes),
		}
	}

	result, err := s.runner.RunScript(ctx, script)
	if err == nil && result == nil {
		err = fmt.Errorf("runner returned no result for script %s", script.ID)
	}

	return execution.RunReport{
		Script: script,
		Result: result,
		Err:    err,
	}
}
