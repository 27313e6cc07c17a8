// Package logger provides the structured logging shared by the ingestion
// pipeline. Loggers are zap-based and named per pipeline component
// (session, writer, coordinator) so one run's output can be filtered by
// stage. Ingest runs emit long bursts of near-identical per-record
// warnings; sampling is disabled so those warnings stay in lockstep with
// the failed-record counters operators reconcile against.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the log level, encoding and output of the root logger.
type Config struct {
	Level       string
	Development bool
	Encoding    string // json or console
	OutputPaths []string
}

var (
	mu   sync.Mutex
	root *zap.Logger
)

// Init builds the root logger. Calling it again replaces the root.
func Init(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	// Per-record warnings must not be dropped; see the package comment.
	zcfg.Sampling = nil
	if cfg.Encoding != "" {
		zcfg.Encoding = cfg.Encoding
	}
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}

	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	root = logger
	mu.Unlock()
	return nil
}

// Get returns the root logger, building a production default when Init
// has not run (tests, library use).
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		root, _ = zap.NewProduction()
	}
	return root
}

// Component returns a named child logger for one pipeline component.
func Component(name string) *zap.Logger {
	return Get().Named(name)
}

// ForRun returns a component logger carrying the run identity fields
// every stage of one ingestion run shares.
func ForRun(component, feedName, dataSpec string) *zap.Logger {
	return Component(component).With(
		zap.String("feed", feedName),
		zap.String("data_spec", dataSpec))
}

// With creates a child of the root logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Debug logs a debug message on the root logger
func Debug(msg string, fields ...zap.Field) {
	Get().Debug(msg, fields...)
}

// Info logs an info message on the root logger
func Info(msg string, fields ...zap.Field) {
	Get().Info(msg, fields...)
}

// Warn logs a warning message on the root logger
func Warn(msg string, fields ...zap.Field) {
	Get().Warn(msg, fields...)
}

// Error logs an error message on the root logger
func Error(msg string, fields ...zap.Field) {
	Get().Error(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if root != nil {
		return root.Sync()
	}
	return nil
}
