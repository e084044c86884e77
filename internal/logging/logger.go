// Package logging builds the zap logger of a run and its per-category child
// loggers. Each pipeline stage logs through its own named logger so one stage
// can be followed in isolation.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tropestats/internal/config"
)

// Category names a pipeline stage.
type Category string

const (
	CategoryBoot   Category = "boot"   // Startup and configuration
	CategoryTags   Category = "tags"   // Tag dictionary ingestion
	CategoryWorks  Category = "works"  // Works scan and aggregation
	CategoryDerive Category = "derive" // Relative and growth series
	CategoryOutput Category = "output" // Serialization
)

// New builds the root logger. verbose forces debug level regardless of cfg.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		zc.Encoding = "json"
	case "console":
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Sampling = nil

	zc.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, cfg.File)
	}

	return zc.Build()
}

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(name) {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return l, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

// For returns the child logger of a category.
func For(logger *zap.Logger, category Category) *zap.Logger {
	return logger.Named(string(category))
}

// Timer measures one phase.
type Timer struct {
	logger *zap.Logger
	phase  string
	start  time.Time
}

// Timed starts timing phase. Call Stop when it ends.
func Timed(logger *zap.Logger, phase string) *Timer {
	logger.Debug("phase started", zap.String("phase", phase))
	return &Timer{logger: logger, phase: phase, start: time.Now()}
}

// Stop logs the elapsed time at info level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Info("phase completed", zap.String("phase", t.phase), zap.Duration("elapsed", elapsed))
	return elapsed
}
