// Package config loads dutyrate settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds dutyrate configuration.
type Config struct {
	// Schedule is the path of the flat HTS export (JSON).
	Schedule string `yaml:"schedule"`

	// PhrasebookDir holds YAML files with extra Chapter 99 phrasings.
	PhrasebookDir string `yaml:"phrasebook_dir"`

	// WatchPhrasebook reloads phrasebooks when the directory changes.
	WatchPhrasebook bool `yaml:"watch_phrasebook"`

	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// OutputConfig configures command output.
type OutputConfig struct {
	Format string `yaml:"format"` // table, json
}

// Environment variables overriding file values.
const (
	EnvSchedule        = "DUTYRATE_SCHEDULE"
	EnvPhrasebookDir   = "DUTYRATE_PHRASEBOOK_DIR"
	EnvWatchPhrasebook = "DUTYRATE_WATCH_PHRASEBOOK"
	EnvLogLevel        = "DUTYRATE_LOG_LEVEL"
)

var (
	// ValidLevels lists the accepted log levels.
	ValidLevels = []string{"debug", "info", "warn", "error"}

	// ValidFormats lists the accepted output formats.
	ValidFormats = []string{"table", "json"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PhrasebookDir: "phrasebooks",
		Logging:       LoggingConfig{Level: "info"},
		Output:        OutputConfig{Format: "table"},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvSchedule); v != "" {
		c.Schedule = v
	}
	if v := os.Getenv(EnvPhrasebookDir); v != "" {
		c.PhrasebookDir = v
	}
	if v := os.Getenv(EnvWatchPhrasebook); v != "" {
		if watch, err := strconv.ParseBool(v); err == nil {
			c.WatchPhrasebook = watch
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if !contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if !contains(ValidFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, ValidFormats)
	}
	return nil
}

// ZapLevel converts the configured level for zap.
func (c LoggingConfig) ZapLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return level, nil
}

// BuildLogger builds a production zap logger writing to stderr at the
// configured level.
func (c LoggingConfig) BuildLogger() (*zap.Logger, error) {
	level, err := c.ZapLevel()
	if err != nil {
		return nil, err
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
