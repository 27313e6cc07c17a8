// Package config provides the unified configuration for racefeed.
// A single Config structure covers the database connection, the vendor
// session policy, the import pipeline and the live monitor, with defaults
// that work for both feeds.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	// Database selects and configures the storage driver.
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Session controls the vendor session policy.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Pipeline controls batching and the import path.
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`

	// Monitor controls the live monitor.
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig configures the storage driver.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path is the database file path for the embedded driver.
	Path string `yaml:"path" mapstructure:"path"`
	// DSN is the connection string for the client-server driver.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	// ReconnectAttempts bounds the writer reconnection loop.
	ReconnectAttempts int `yaml:"reconnect_attempts" mapstructure:"reconnect_attempts"`
	// ReconnectDelay is the initial reconnect backoff delay.
	ReconnectDelay time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay"`
}

// SessionConfig configures the vendor session state machine.
type SessionConfig struct {
	// ServiceKey is the vendor service key (central feed).
	ServiceKey string `yaml:"service_key" mapstructure:"service_key"`
	// OpenTimeout bounds a single open call.
	OpenTimeout time.Duration `yaml:"open_timeout" mapstructure:"open_timeout"`
	// StatusInterval is the download status polling cadence.
	StatusInterval time.Duration `yaml:"status_interval" mapstructure:"status_interval"`
	// StallTimeout marks a download with no progress as failed-retryable.
	StallTimeout time.Duration `yaml:"stall_timeout" mapstructure:"stall_timeout"`
	// RetryAttempts bounds session-level retries (codes -203/-502/-503).
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	// RetryDelay is the minimum wait before reopening after -502/-503.
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	// RateLimitDelay is the minimum wait after a -421.
	RateLimitDelay time.Duration `yaml:"rate_limit_delay" mapstructure:"rate_limit_delay"`
	// ReadBudget caps read iterations per session.
	ReadBudget int `yaml:"read_budget" mapstructure:"read_budget"`
	// RemapSetupOptions applies the regional call-site remap of open
	// options 1/2 to 3/4. Off unless vendor documentation confirms it.
	RemapSetupOptions bool `yaml:"remap_setup_options" mapstructure:"remap_setup_options"`
}

// PipelineConfig configures batching and backfill chunking.
type PipelineConfig struct {
	// BatchSize is the per-table upsert batch capacity.
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
	// BufferSize is the session-to-writer channel capacity.
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size"`
	// ChunkDays splits a backfill date range; 0 picks the feed default
	// (regional feed: 1).
	ChunkDays int `yaml:"chunk_days" mapstructure:"chunk_days"`
	// WorkerIsolation runs each chunk in a short-lived child process.
	WorkerIsolation bool `yaml:"worker_isolation" mapstructure:"worker_isolation"`
	// WorkerTimeout bounds one child process.
	WorkerTimeout time.Duration `yaml:"worker_timeout" mapstructure:"worker_timeout"`
}

// MonitorConfig configures the live monitor.
type MonitorConfig struct {
	// Interval is the off-race-day polling cadence.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// RaceDayInterval is the cadence around post time on race days.
	RaceDayInterval time.Duration `yaml:"race_day_interval" mapstructure:"race_day_interval"`
	// HTTPAddr is the local control surface listen address.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Encoding    string `yaml:"encoding" mapstructure:"encoding"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// New returns a Config with production defaults.
func New() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:            "sqlite",
			Path:              "racefeed.db",
			ConnectTimeout:    10 * time.Second,
			ReconnectAttempts: 5,
			ReconnectDelay:    time.Second,
		},
		Session: SessionConfig{
			OpenTimeout:    300 * time.Second,
			StatusInterval: 80 * time.Millisecond,
			StallTimeout:   60 * time.Second,
			RetryAttempts:  5,
			RetryDelay:     10 * time.Second,
			RateLimitDelay: 30 * time.Second,
			ReadBudget:     100000,
		},
		Pipeline: PipelineConfig{
			BatchSize:     1000,
			BufferSize:    4096,
			WorkerTimeout: 300 * time.Second,
		},
		Monitor: MonitorConfig{
			Interval:        60 * time.Second,
			RaceDayInterval: 30 * time.Second,
			HTTPAddr:        ":8765",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}
	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("pipeline.batch_size must be positive")
	}
	if c.Pipeline.BufferSize <= 0 {
		return fmt.Errorf("pipeline.buffer_size must be positive")
	}
	if c.Session.RetryAttempts < 0 {
		return fmt.Errorf("session.retry_attempts cannot be negative")
	}
	if c.Session.ReadBudget <= 0 {
		return fmt.Errorf("session.read_budget must be positive")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	return nil
}
