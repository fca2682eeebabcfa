// Package config loads pyconsole settings from defaults, an optional YAML
// file and PYCONSOLE_* environment variables.
package config

import (
	"time"

	"pyconsole/internal/domain/execution"
)

// Backend names accepted by runtime.backend.
const (
	BackendLocal  = "local"
	BackendDocker = "docker"
)

// Config is the top-level configuration shared by the web server and the
// batch runner.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Sessions SessionsConfig `yaml:"sessions"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Runner   RunnerConfig   `yaml:"runner"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`                // default ":8080"
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"` // default 10s
	IdleTimeout       time.Duration `yaml:"idle_timeout"`        // default 2m
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`    // default 15s
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`    // default execution.MaxScriptBytes
}

// RuntimeConfig selects and configures the execution backend.
type RuntimeConfig struct {
	Backend          string        `yaml:"backend"`      // "local" (default) or "docker"
	TimeLimit        time.Duration `yaml:"time_limit"`   // zero means unlimited
	MemoryLimitBytes int64         `yaml:"memory_limit"` // docker only, zero means unlimited
	Local            LocalConfig   `yaml:"local"`
	Docker           DockerConfig  `yaml:"docker"`
}

// Limits returns the operator limits applied to every execution.
func (r RuntimeConfig) Limits() execution.RunLimits {
	return execution.RunLimits{
		TimeLimit:        r.TimeLimit,
		MemoryLimitBytes: r.MemoryLimitBytes,
	}
}

// LocalConfig configures the host interpreter backend.
type LocalConfig struct {
	Python  string `yaml:"python"`  // default "python3"
	Workdir string `yaml:"workdir"` // default: os temp dir
}

// DockerConfig configures the container backend.
type DockerConfig struct {
	Image          string `yaml:"image"`           // default "python:3.12-slim"
	Workdir        string `yaml:"workdir"`         // default "/tmp"
	PackagesVolume string `yaml:"packages_volume"` // default "pyconsole-packages"
	NetworkMode    string `yaml:"network_mode"`    // default "none"
}

// SessionsConfig controls console session lifetime.
type SessionsConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`   // default 1h
	SweepInterval time.Duration `yaml:"sweep_interval"` // default 1m
}

// KafkaConfig configures report publication and the script feed. Reports
// are disabled when no brokers are configured.
type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	ReportsTopic string   `yaml:"reports_topic"` // default "pyconsole-reports"
	ScriptsTopic string   `yaml:"scripts_topic"` // default "pyconsole-scripts"
	GroupID      string   `yaml:"group_id"`      // default "pyconsole-runner"
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// RunnerConfig configures the headless batch runner.
type RunnerConfig struct {
	MaxScripts  int `yaml:"max_scripts"`  // zero means until the feed ends
	MaxParallel int `yaml:"max_parallel"` // default 1
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config populated with built-in defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
			ShutdownTimeout:   15 * time.Second,
			MaxUploadBytes:    execution.MaxScriptBytes,
		},
		Runtime: RuntimeConfig{
			Backend: BackendLocal,
			Local: LocalConfig{
				Python: "python3",
			},
			Docker: DockerConfig{
				Image:          "python:3.12-slim",
				Workdir:        "/tmp",
				PackagesVolume: "pyconsole-packages",
				NetworkMode:    "none",
			},
		},
		Sessions: SessionsConfig{
			IdleTimeout:   time.Hour,
			SweepInterval: time.Minute,
		},
		Kafka: KafkaConfig{
			ReportsTopic: "pyconsole-reports",
			ScriptsTopic: "pyconsole-scripts",
			GroupID:      "pyconsole-runner",
		},
		Runner: RunnerConfig{
			MaxParallel: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
