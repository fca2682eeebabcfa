package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr is required"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be >= 0"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be > 0"))
	}

	switch c.Runtime.Backend {
	case BackendLocal:
		if c.Runtime.Local.Python == "" {
			errs = append(errs, fmt.Errorf("runtime.local.python is required"))
		}
	case BackendDocker:
		if c.Runtime.Docker.Image == "" {
			errs = append(errs, fmt.Errorf("runtime.docker.image is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("runtime.backend must be %q or %q, got %q", BackendLocal, BackendDocker, c.Runtime.Backend))
	}
	if c.Runtime.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("runtime.time_limit must be >= 0"))
	}
	if c.Runtime.MemoryLimitBytes < 0 {
		errs = append(errs, fmt.Errorf("runtime.memory_limit must be >= 0"))
	}

	if c.Sessions.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("sessions.idle_timeout must be >= 0"))
	}
	if c.Sessions.IdleTimeout > 0 && c.Sessions.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("sessions.sweep_interval must be > 0 when idle_timeout is set"))
	}

	if c.Kafka.Enabled() {
		if c.Kafka.ReportsTopic == "" {
			errs = append(errs, fmt.Errorf("kafka.reports_topic is required when brokers are set"))
		}
		if c.Kafka.ScriptsTopic == "" {
			errs = append(errs, fmt.Errorf("kafka.scripts_topic is required when brokers are set"))
		}
	}

	if c.Runner.MaxScripts < 0 {
		errs = append(errs, fmt.Errorf("runner.max_scripts must be >= 0"))
	}
	if c.Runner.MaxParallel <= 0 {
		errs = append(errs, fmt.Errorf("runner.max_parallel must be > 0"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not recognized", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /"))
	}

	return errors.Join(errs...)
}
