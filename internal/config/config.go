// Package config loads pydeps settings from a YAML file, PYDEPS_* environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatTable, FormatJSON, FormatYAML}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config is the top-level configuration struct for pydeps.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Scan          ScanConfig          `mapstructure:"scan"`
	Classify      ClassifyConfig      `mapstructure:"classify"`
	Output        OutputConfig        `mapstructure:"output"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ScanConfig holds file discovery and worker pool settings.
type ScanConfig struct {
	Extensions  []string `mapstructure:"extensions"`
	Exclude     []string `mapstructure:"exclude"`
	MaxFileSize string   `mapstructure:"max_file_size"`
	Workers     int      `mapstructure:"workers"`
	SkipHidden  bool     `mapstructure:"skip_hidden"`
	SkipVendor  bool     `mapstructure:"skip_vendor"`
}

// ClassifyConfig holds classification overrides.
type ClassifyConfig struct {
	ExtraStdlib []string `mapstructure:"extra_stdlib"`
	KnownLocal  []string `mapstructure:"known_local"`
}

// OutputConfig holds report rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds telemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint    string `mapstructure:"otlp_endpoint"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`
	OTLPInsecure    bool   `mapstructure:"otlp_insecure"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("scan.workers must be non-negative")
	// ErrInvalidExtension indicates an extension without a leading dot.
	ErrInvalidExtension = errors.New("scan.extensions entries must start with '.'")
	// ErrInvalidMaxFileSize indicates an unparsable size string.
	ErrInvalidMaxFileSize = errors.New("scan.max_file_size must be a byte size such as 1MB")
	// ErrInvalidFormat indicates an unknown output format.
	ErrInvalidFormat = errors.New("output.format must be one of text, table, json, yaml")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("logging.format must be text or json")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	scanErr := c.validateScan()
	if scanErr != nil {
		return scanErr
	}

	if !slices.Contains(Formats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if !slices.Contains(logFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 0 {
		return ErrInvalidWorkers
	}

	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}

	_, err := c.Scan.MaxFileSizeBytes()

	return err
}

// MaxFileSizeBytes parses Scan.MaxFileSize. Empty means unlimited and
// yields zero.
func (s ScanConfig) MaxFileSizeBytes() (int64, error) {
	if s.MaxFileSize == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(s.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMaxFileSize, err)
	}

	return int64(size), nil //nolint:gosec // sizes beyond int64 are not meaningful here
}
