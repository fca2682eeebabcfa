// Command pyconsole-runner executes Python scripts headless, either from the
// files named on the command line or from the Kafka scripts topic.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pyconsole/internal/app/batch"
	"pyconsole/internal/app/producer"
	"pyconsole/internal/config"
	"pyconsole/internal/domain/execution"
	kafkainfra "pyconsole/internal/infra/kafka"
	"pyconsole/internal/observability"
	"pyconsole/internal/ports"
	"pyconsole/internal/runtime/backends"
)

const publishTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pyconsole-runner: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), logger); err != nil {
		logger.Error("runner failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, paths []string, logger *slog.Logger) error {
	registry, backend, err := backends.Open(cfg.Runtime)
	if err != nil {
		return fmt.Errorf("open runtime: %w", err)
	}
	defer func() {
		if cerr := registry.Close(); cerr != nil {
			logger.Warn("failed to close runtime", "error", cerr)
		}
	}()

	source, closeSource, err := newProducer(cfg.Kafka, paths)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSource(); cerr != nil {
			logger.Warn("failed to close script source", "error", cerr)
		}
	}()

	var publisher ports.ReportPublisher
	if cfg.Kafka.Enabled() {
		kp, err := kafkainfra.NewPublisher(kafkainfra.PublisherConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ReportsTopic,
		})
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer func() {
			if cerr := kp.Close(); cerr != nil {
				logger.Warn("failed to close report publisher", "error", cerr)
			}
		}()
		publisher = kp
	}

	logger.Info("runner starting",
		"backend", backend.Name(),
		"files", len(paths),
		"max_scripts", cfg.Runner.MaxScripts,
		"max_parallel", cfg.Runner.MaxParallel,
	)

	service := batch.NewService(backend)
	if err := service.ExecuteFromProducer(
		ctx,
		source,
		cfg.Runner.MaxScripts,
		cfg.Runner.MaxParallel,
		func(report execution.RunReport) {
			printReport(os.Stdout, os.Stderr, report)
			recordReport(ctx, publisher, logger, report)
		},
	); err != nil {
		return fmt.Errorf("execute scripts: %w", err)
	}
	return nil
}

// newProducer reads the named files when any are given, and the Kafka
// scripts topic otherwise.
func newProducer(cfg config.KafkaConfig, paths []string) (ports.ScriptProducer, func() error, error) {
	if len(paths) > 0 {
		return producer.NewService(paths...), func() error { return nil }, nil
	}
	if !cfg.Enabled() {
		return nil, nil, fmt.Errorf("no script files given and no kafka brokers configured")
	}

	consumer, err := kafkainfra.NewConsumer(kafkainfra.Config{
		Brokers: cfg.Brokers,
		Topic:   cfg.ScriptsTopic,
		GroupID: cfg.GroupID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, consumer.Close, nil
}

func printReport(stdout, stderr io.Writer, report execution.RunReport) {
	if report.Err != nil {
		fmt.Fprintf(stderr, "script %q failed: %v\n", report.Script.ID, report.Err)
		return
	}

	result := report.Result
	fmt.Fprintf(stdout, "script %q finished with %s (exit %d) after %s\n",
		report.Script.ID, result.Status, result.ExitCode, result.Duration.Round(time.Millisecond))
	if result.Stdout != "" {
		fmt.Fprint(stdout, result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(stderr, result.Stderr)
	}
}

func recordReport(ctx context.Context, publisher ports.ReportPublisher, logger *slog.Logger, report execution.RunReport) {
	if report.Result != nil {
		observability.ScriptRunsTotal.WithLabelValues(string(report.Result.Status)).Inc()
	}
	if publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := publisher.PublishRunReport(ctx, report); err != nil {
		observability.ReportPublishFailuresTotal.WithLabelValues("run").Inc()
		logger.Warn("publish run report", "script", report.Script.ID, "error", err)
	}
}
