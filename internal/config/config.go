// Package config loads hunkstage settings from defaults, an optional YAML
// file and HUNKSTAGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Config is the top-level configuration struct for hunkstage.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Git       GitConfig       `mapstructure:"git"`
	Stage     StageConfig     `mapstructure:"stage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GitConfig controls how the git executable is invoked.
type GitConfig struct {
	Binary    string   `mapstructure:"binary"`
	Env       []string `mapstructure:"env"`
	WaitDelay string   `mapstructure:"wait_delay"`
}

// StageConfig controls staging sessions.
type StageConfig struct {
	Backend       string `mapstructure:"backend"`
	Terminator    string `mapstructure:"terminator"`
	VerifyPrompts bool   `mapstructure:"verify_prompts"`
	CrossCheck    bool   `mapstructure:"cross_check"`
	ContextLines  int    `mapstructure:"context_lines"`
	MaxDiffSize   string `mapstructure:"max_diff_size"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Environment  string  `mapstructure:"environment"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	MetricsDump  bool    `mapstructure:"metrics_dump"`
}

// Staging backends.
const (
	BackendPatch = "patch"
	BackendApply = "apply"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidBinary indicates an empty git binary.
	ErrInvalidBinary = errors.New("git.binary must not be empty")
	// ErrInvalidEnv indicates an env entry without "=".
	ErrInvalidEnv = errors.New("git.env entries must have the form KEY=value")
	// ErrInvalidWaitDelay indicates an unparseable or negative wait delay.
	ErrInvalidWaitDelay = errors.New("git.wait_delay must be a non-negative duration")
	// ErrInvalidBackend indicates an unknown staging backend.
	ErrInvalidBackend = errors.New("stage.backend must be patch or apply")
	// ErrInvalidTerminator indicates an empty session terminator.
	ErrInvalidTerminator = errors.New("stage.terminator must not be empty")
	// ErrInvalidContextLines indicates a negative context line count.
	ErrInvalidContextLines = errors.New("stage.context_lines must be non-negative")
	// ErrInvalidMaxDiffSize indicates an unparseable size limit.
	ErrInvalidMaxDiffSize = errors.New("stage.max_diff_size must be a byte size such as 16MB")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
	// ErrInvalidSampleRatio indicates a sample ratio outside [0, 1].
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be between 0 and 1")
)

// Validate checks every section and joins all violations.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Git.Binary) == "" {
		errs = append(errs, ErrInvalidBinary)
	}

	for _, kv := range c.Git.Env {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidEnv, kv))
		}
	}

	if _, err := c.Git.WaitDelayDuration(); err != nil {
		errs = append(errs, err)
	}

	if c.Stage.Backend != BackendPatch && c.Stage.Backend != BackendApply {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBackend, c.Stage.Backend))
	}

	if c.Stage.Terminator == "" {
		errs = append(errs, ErrInvalidTerminator)
	}

	if c.Stage.ContextLines < 0 {
		errs = append(errs, ErrInvalidContextLines)
	}

	if _, err := c.Stage.MaxDiffBytes(); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, ErrInvalidSampleRatio)
	}

	return errors.Join(errs...)
}

// WaitDelayDuration parses WaitDelay. Empty means zero.
func (g GitConfig) WaitDelayDuration() (time.Duration, error) {
	if g.WaitDelay == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(g.WaitDelay)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWaitDelay, g.WaitDelay)
	}

	return d, nil
}

// MaxDiffBytes parses MaxDiffSize. Empty or "0" means unlimited.
func (s StageConfig) MaxDiffBytes() (uint64, error) {
	if s.MaxDiffSize == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(s.MaxDiffSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxDiffSize, s.MaxDiffSize)
	}

	return n, nil
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}
