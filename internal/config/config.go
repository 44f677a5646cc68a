// Copyright 2025 James Ross
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Worker bundles the tunables that shape how a Transport's worker runs.
type Worker struct {
	Class string        `mapstructure:"class"`
	Count int           `mapstructure:"count"`
}

// Queue bundles queue-level limits.
type Queue struct {
	Class        string `mapstructure:"class"`
	MaxSize      int    `mapstructure:"max_size"`
}

// Health configures the advisory adapter health monitor.
type Health struct {
	Window           time.Duration `mapstructure:"window"`
	CooldownPeriod   time.Duration `mapstructure:"cooldown_period"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
	MinSamples       int           `mapstructure:"min_samples"`
}

// Observability bundles logging and metrics settings.
type Observability struct {
	MetricsPort int    `mapstructure:"metrics_port"`
	LogLevel    string `mapstructure:"log_level"`
}

// Config is the full set of recognized EMIT_-prefixed settings.
type Config struct {
	AdapterClass     string        `mapstructure:"adapter_class"`
	TransportClass   string        `mapstructure:"transport_class"`
	WorkerClass      string        `mapstructure:"worker_class"`
	QueueClass       string        `mapstructure:"queue_class"`
	EventClass       string        `mapstructure:"event_class"`
	EventStackClass  string        `mapstructure:"event_stack_class"`
	AdapterURL       string        `mapstructure:"adapter_url"`
	MaxQueueSize     int           `mapstructure:"max_queue_size"`
	MaxFlushTime     time.Duration `mapstructure:"max_flush_time"`
	MaxStoppingTime  time.Duration `mapstructure:"max_stopping_time"`
	MaxWorkTime      time.Duration `mapstructure:"max_work_time"`
	Debug            bool          `mapstructure:"debug"`
	Pretty           bool          `mapstructure:"pretty"`

	Worker        Worker        `mapstructure:"worker"`
	Queue         Queue         `mapstructure:"queue"`
	Health        Health        `mapstructure:"health"`
	Observability Observability `mapstructure:"observability"`
}

func defaultConfig() *Config {
	return &Config{
		AdapterClass:    "noop",
		TransportClass:  "standard",
		WorkerClass:     "threaded",
		QueueClass:      "standard",
		EventClass:      "standard",
		EventStackClass: "standard",
		AdapterURL:      "",
		MaxQueueSize:    -1,
		MaxFlushTime:    10 * time.Second,
		MaxStoppingTime: 30 * time.Second,
		MaxWorkTime:     500 * time.Millisecond,
		Debug:           false,
		Pretty:          false,
		Worker: Worker{
			Class: "threaded",
			Count: 1,
		},
		Queue: Queue{
			Class:   "standard",
			MaxSize: -1,
		},
		Health: Health{
			Window:           30 * time.Second,
			CooldownPeriod:   5 * time.Second,
			FailureThreshold: 0.5,
			MinSamples:       5,
		},
		Observability: Observability{
			MetricsPort: 9090,
			LogLevel:    "info",
		},
	}
}

// Load reads configuration from an optional YAML file plus EMIT_-prefixed
// environment variable overrides (e.g. EMIT_MAX_FLUSH_TIME, EMIT_WORKER_COUNT).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("EMIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultConfig()
	v.SetDefault("adapter_class", def.AdapterClass)
	v.SetDefault("transport_class", def.TransportClass)
	v.SetDefault("worker_class", def.WorkerClass)
	v.SetDefault("queue_class", def.QueueClass)
	v.SetDefault("event_class", def.EventClass)
	v.SetDefault("event_stack_class", def.EventStackClass)
	v.SetDefault("adapter_url", def.AdapterURL)
	v.SetDefault("max_queue_size", def.MaxQueueSize)
	v.SetDefault("max_flush_time", def.MaxFlushTime)
	v.SetDefault("max_stopping_time", def.MaxStoppingTime)
	v.SetDefault("max_work_time", def.MaxWorkTime)
	v.SetDefault("debug", def.Debug)
	v.SetDefault("pretty", def.Pretty)

	v.SetDefault("worker.class", def.Worker.Class)
	v.SetDefault("worker.count", def.Worker.Count)

	v.SetDefault("queue.class", def.Queue.Class)
	v.SetDefault("queue.max_size", def.Queue.MaxSize)

	v.SetDefault("health.window", def.Health.Window)
	v.SetDefault("health.cooldown_period", def.Health.CooldownPeriod)
	v.SetDefault("health.failure_threshold", def.Health.FailureThreshold)
	v.SetDefault("health.min_samples", def.Health.MinSamples)

	v.SetDefault("observability.metrics_port", def.Observability.MetricsPort)
	v.SetDefault("observability.log_level", def.Observability.LogLevel)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks config constraints and returns a descriptive error on any
// invalid setting.
func Validate(cfg *Config) error {
	if cfg.Worker.Count < 1 {
		return fmt.Errorf("worker.count must be >= 1")
	}
	if cfg.MaxFlushTime <= 0 {
		return fmt.Errorf("max_flush_time must be > 0")
	}
	if cfg.MaxStoppingTime <= 0 {
		return fmt.Errorf("max_stopping_time must be > 0")
	}
	if cfg.MaxWorkTime <= 0 {
		return fmt.Errorf("max_work_time must be > 0")
	}
	if cfg.Health.FailureThreshold <= 0 || cfg.Health.FailureThreshold > 1 {
		return fmt.Errorf("health.failure_threshold must be in (0, 1]")
	}
	if cfg.Health.MinSamples < 1 {
		return fmt.Errorf("health.min_samples must be >= 1")
	}
	if cfg.Observability.MetricsPort <= 0 || cfg.Observability.MetricsPort > 65535 {
		return fmt.Errorf("observability.metrics_port must be 1..65535")
	}
	return nil
}
