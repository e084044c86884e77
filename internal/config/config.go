package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tropestats configuration.
type Config struct {
	// Input data files
	Input InputConfig `yaml:"input"`

	// Output directory and file names
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal progress reporting
	Progress ProgressConfig `yaml:"progress"`

	// Alias table checks
	Aliases AliasConfig `yaml:"aliases"`
}

// InputConfig locates the two CSV inputs.
type InputConfig struct {
	Tags  string `yaml:"tags"`
	Works string `yaml:"works"`
}

// OutputConfig configures where results are written.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Document  string `yaml:"document"`   // structured document file name
	TotalsCSV string `yaml:"totals_csv"` // global totals file name
}

// ProgressConfig configures the progress bar.
type ProgressConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Width     int    `yaml:"width"`
	Interval  string `yaml:"interval"`
	CountRows bool   `yaml:"count_rows"` // pre-count works rows for a bar target
}

// AliasConfig configures how alias table issues are treated.
type AliasConfig struct {
	FailOnIssues bool `yaml:"fail_on_issues"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Tags:  "data/tags.csv",
			Works: "data/works.csv",
		},
		Output: OutputConfig{
			Dir:       "out",
			Document:  "works.json",
			TotalsCSV: "total_count.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Progress: ProgressConfig{
			Enabled:   true,
			Width:     40,
			Interval:  "200ms",
			CountRows: true,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("TROPESTATS_TAGS"); path != "" {
		c.Input.Tags = path
	}
	if path := os.Getenv("TROPESTATS_WORKS"); path != "" {
		c.Input.Works = path
	}
	if dir := os.Getenv("TROPESTATS_OUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
	if level := os.Getenv("TROPESTATS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetProgressInterval returns the progress redraw interval as a duration.
func (c *Config) GetProgressInterval() time.Duration {
	d, err := time.ParseDuration(c.Progress.Interval)
	if err != nil || d < 0 {
		return 200 * time.Millisecond
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// ValidLogFormats lists the accepted logging encodings.
var ValidLogFormats = []string{"json", "console"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Input.Tags == "" {
		errs = append(errs, errors.New("tags input not configured (set input.tags or TROPESTATS_TAGS)"))
	}
	if c.Input.Works == "" {
		errs = append(errs, errors.New("works input not configured (set input.works or TROPESTATS_WORKS)"))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output directory not configured (set output.dir or TROPESTATS_OUT_DIR)"))
	}
	for field, name := range map[string]string{"output.document": c.Output.Document, "output.totals_csv": c.Output.TotalsCSV} {
		if name == "" || name != filepath.Base(name) {
			errs = append(errs, fmt.Errorf("%s must be a plain file name, got %q", field, name))
		}
	}
	if c.Output.Document != "" && c.Output.Document == c.Output.TotalsCSV {
		errs = append(errs, errors.New("output.document and output.totals_csv must differ"))
	}

	if c.Logging.Level != "" && !contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels))
	}
	if c.Logging.Format != "" && !contains(ValidLogFormats, strings.ToLower(c.Logging.Format)) {
		errs = append(errs, fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats))
	}

	if c.Progress.Interval != "" {
		if _, err := time.ParseDuration(c.Progress.Interval); err != nil {
			errs = append(errs, fmt.Errorf("invalid progress interval %q: %w", c.Progress.Interval, err))
		}
	}
	if c.Progress.Width < 0 {
		errs = append(errs, fmt.Errorf("progress width must not be negative, got %d", c.Progress.Width))
	}

	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
