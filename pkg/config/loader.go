package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/keibalab/racefeed/pkg/errors"
)

// Load reads configuration from the given file path (YAML), applying
// defaults for everything the file omits. Environment variables prefixed
// RACEFEED_ override file values (RACEFEED_DATABASE_DSN, ...). An empty
// path returns the defaults with environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RACEFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := New()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.driver", cfg.Database.Driver)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.dsn", cfg.Database.DSN)
	v.SetDefault("database.connect_timeout", cfg.Database.ConnectTimeout)
	v.SetDefault("database.reconnect_attempts", cfg.Database.ReconnectAttempts)
	v.SetDefault("database.reconnect_delay", cfg.Database.ReconnectDelay)

	v.SetDefault("session.service_key", cfg.Session.ServiceKey)
	v.SetDefault("session.open_timeout", cfg.Session.OpenTimeout)
	v.SetDefault("session.status_interval", cfg.Session.StatusInterval)
	v.SetDefault("session.stall_timeout", cfg.Session.StallTimeout)
	v.SetDefault("session.retry_attempts", cfg.Session.RetryAttempts)
	v.SetDefault("session.retry_delay", cfg.Session.RetryDelay)
	v.SetDefault("session.rate_limit_delay", cfg.Session.RateLimitDelay)
	v.SetDefault("session.read_budget", cfg.Session.ReadBudget)
	v.SetDefault("session.remap_setup_options", cfg.Session.RemapSetupOptions)

	v.SetDefault("pipeline.batch_size", cfg.Pipeline.BatchSize)
	v.SetDefault("pipeline.buffer_size", cfg.Pipeline.BufferSize)
	v.SetDefault("pipeline.chunk_days", cfg.Pipeline.ChunkDays)
	v.SetDefault("pipeline.worker_isolation", cfg.Pipeline.WorkerIsolation)
	v.SetDefault("pipeline.worker_timeout", cfg.Pipeline.WorkerTimeout)

	v.SetDefault("monitor.interval", cfg.Monitor.Interval)
	v.SetDefault("monitor.race_day_interval", cfg.Monitor.RaceDayInterval)
	v.SetDefault("monitor.http_addr", cfg.Monitor.HTTPAddr)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.encoding", cfg.Logging.Encoding)
	v.SetDefault("logging.development", cfg.Logging.Development)
}
