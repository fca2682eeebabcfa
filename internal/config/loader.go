package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding a config file path.
const ConfigEnv = "PYCONSOLE_CONFIG"

const defaultConfigFile = "pyconsole.yaml"

// Load builds the configuration in layers: defaults, then the YAML file
// (explicit path, PYCONSOLE_CONFIG, ./pyconsole.yaml), then PYCONSOLE_*
// environment variables. The result is validated.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if path := discoverConfigFile(configPath); path != "" {
		if err := loadYAMLFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv(ConfigEnv); envPath != "" {
		return envPath
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

// loadYAMLFile decodes path over cfg. Fields absent from the file keep
// their current values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Addr = envOrDefault("PYCONSOLE_ADDR", cfg.Server.Addr)

	cfg.Runtime.Backend = envOrDefault("PYCONSOLE_BACKEND", cfg.Runtime.Backend)
	cfg.Runtime.TimeLimit = parseDuration(os.Getenv("PYCONSOLE_TIME_LIMIT"), cfg.Runtime.TimeLimit)
	cfg.Runtime.MemoryLimitBytes = parseBytes(os.Getenv("PYCONSOLE_MEMORY_LIMIT"), cfg.Runtime.MemoryLimitBytes)
	cfg.Runtime.Local.Python = envOrDefault("PYCONSOLE_PYTHON", cfg.Runtime.Local.Python)
	cfg.Runtime.Local.Workdir = envOrDefault("PYCONSOLE_WORKDIR", cfg.Runtime.Local.Workdir)
	cfg.Runtime.Docker.Image = envOrDefault("PYCONSOLE_DOCKER_IMAGE", cfg.Runtime.Docker.Image)
	cfg.Runtime.Docker.PackagesVolume = envOrDefault("PYCONSOLE_PACKAGES_VOLUME", cfg.Runtime.Docker.PackagesVolume)

	cfg.Sessions.IdleTimeout = parseDuration(os.Getenv("PYCONSOLE_SESSION_IDLE_TIMEOUT"), cfg.Sessions.IdleTimeout)

	if raw := os.Getenv("PYCONSOLE_KAFKA_BROKERS"); raw != "" {
		cfg.Kafka.Brokers = parseBrokerList(raw)
	}
	cfg.Kafka.ReportsTopic = envOrDefault("PYCONSOLE_REPORTS_TOPIC", cfg.Kafka.ReportsTopic)
	cfg.Kafka.ScriptsTopic = envOrDefault("PYCONSOLE_SCRIPTS_TOPIC", cfg.Kafka.ScriptsTopic)
	cfg.Kafka.GroupID = envOrDefault("PYCONSOLE_GROUP_ID", cfg.Kafka.GroupID)

	cfg.Runner.MaxScripts = parseMaxScripts(os.Getenv("PYCONSOLE_MAX_SCRIPTS"), cfg.Runner.MaxScripts)
	cfg.Runner.MaxParallel = parseMaxParallel(os.Getenv("PYCONSOLE_MAX_PARALLEL"), cfg.Runner.MaxParallel)

	cfg.Logging.Level = envOrDefault("PYCONSOLE_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = envOrDefault("PYCONSOLE_LOG_FORMAT", cfg.Logging.Format)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseBrokerList(raw string) []string {
	fields := strings.Split(raw, ",")
	brokers := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

func parseMaxScripts(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func parseMaxParallel(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func parseBytes(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
