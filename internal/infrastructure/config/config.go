package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application-level configuration for the mr CLI.
// The routing rules and entries themselves live in the routing file; this
// struct configures where that file is and how the surrounding process
// behaves.
type Config struct {
	// RoutingFile is the path to the routing configuration file.
	RoutingFile string `yaml:"routing_file"`

	// DecisionLog is the optional path to a SQLite database recording
	// classification decisions. Empty disables decision logging.
	DecisionLog string `yaml:"decision_log,omitempty"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Tracing configures OpenTelemetry trace export.
	Tracing TracingConfig `yaml:"tracing"`

	// Watch configures the hot-reload watcher.
	Watch WatchConfig `yaml:"watch"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns trace export on.
	Enabled bool `yaml:"enabled"`

	// Exporter is none, stdout, or otlp.
	Exporter string `yaml:"exporter"`

	// OTLPEndpoint is the collector endpoint for the otlp exporter.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`

	// SampleRate is the trace sampling rate between 0.0 and 1.0.
	SampleRate float64 `yaml:"sample_rate"`
}

// WatchConfig configures the configuration hot-reload watcher.
type WatchConfig struct {
	// Debounce is the window that coalesces bursts of filesystem events
	// into a single reload.
	Debounce time.Duration `yaml:"debounce"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		RoutingFile: defaultRoutingPath(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "none",
			SampleRate: 1.0,
		},
		Watch: WatchConfig{
			Debounce: time.Second,
		},
	}
}

// defaultRoutingPath returns ~/.modelrouter/routing.yaml, or a relative
// fallback when the home directory cannot be determined.
func defaultRoutingPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "routing.yaml"
	}
	return filepath.Join(homeDir, ".modelrouter", "routing.yaml")
}

// Validate checks the Config for invalid values.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	var errs []error

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}

	switch c.Tracing.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("invalid trace exporter %q", c.Tracing.Exporter))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("sample_rate %v out of range [0,1]", c.Tracing.SampleRate))
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch debounce must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// LoadConfig loads the application config from the given path, falling back
// to defaults when the path is empty or the file does not exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return NewDefaultConfig(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
