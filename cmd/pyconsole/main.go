// Command pyconsole serves the browser Python console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"pyconsole/internal/app/console"
	"pyconsole/internal/config"
	kafkainfra "pyconsole/internal/infra/kafka"
	"pyconsole/internal/observability"
	"pyconsole/internal/ports"
	"pyconsole/internal/runtime/backends"
	httptransport "pyconsole/internal/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pyconsole: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("pyconsole failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	registry, backend, err := backends.Open(cfg.Runtime)
	if err != nil {
		return fmt.Errorf("open runtime: %w", err)
	}
	defer func() {
		if cerr := registry.Close(); cerr != nil {
			logger.Warn("failed to close runtime", "error", cerr)
		}
	}()
	logger.Info("runtime ready", "backend", backend.Name(), "available", registry.Names())

	publisher, err := newPublisher(cfg.Kafka)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer func() {
			if cerr := publisher.Close(); cerr != nil {
				logger.Warn("failed to close report publisher", "error", cerr)
			}
		}()
		logger.Info("publishing reports", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.ReportsTopic)
	}

	sessions := console.NewSessionStore(cfg.Sessions.IdleTimeout)
	go sessions.RunJanitor(ctx, cfg.Sessions.SweepInterval)

	deps := console.Dependencies{
		Evaluator: backend,
		Scripts:   backend,
		Installer: backend,
		Sessions:  sessions,
		Logger:    logger,
	}
	if publisher != nil {
		deps.Publisher = publisher
	}
	service, err := console.NewService(deps)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := httptransport.NewRouter(httptransport.Config{
		Console:        service,
		Logger:         logger,
		Backend:        backend.Name(),
		MetricsPath:    metricsPath,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	server := httptransport.NewServer(router, httptransport.ServerConfig{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}, logger)

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// newPublisher returns nil when no brokers are configured.
func newPublisher(cfg config.KafkaConfig) (ports.ReportPublisher, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	publisher, err := kafkainfra.NewPublisher(kafkainfra.PublisherConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.ReportsTopic,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	return publisher, nil
}
