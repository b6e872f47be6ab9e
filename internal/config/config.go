// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GlobalConfig represents the top-level static configuration.
// Maps to the `rlmon:` root key in YAML.
type GlobalConfig struct {
	Radio       RadioConfig       `mapstructure:"radio"`
	Transport   TransportConfig   `mapstructure:"transport"`
	Sinks       []SinkConfig      `mapstructure:"sinks"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Log         LogConfig         `mapstructure:"log"`
	PIDFile     string            `mapstructure:"pid_file"`
}

// ─── Radio Link ───

// RadioConfig contains the link-quality classification settings and the
// identity of the modem the telemetry is expected to originate from.
type RadioConfig struct {
	// LowRSSI is the warning threshold compared against the raw 0-255
	// receiver signal unit (not the derived dBm value). An explicit zero
	// disables signal-level warnings; an omitted key gets the default 40.
	LowRSSI uint8 `mapstructure:"low_rssi"`

	// ExpectedSysID / ExpectedCompID identify the modem. SiK/3DR firmware
	// stamps status frames with the ASCII pair '3'/'D'.
	ExpectedSysID  uint8 `mapstructure:"expected_sysid"`
	ExpectedCompID uint8 `mapstructure:"expected_compid"`

	// AdvisoryInterval caps identity-mismatch warnings to one per window.
	AdvisoryInterval time.Duration `mapstructure:"advisory_interval"`
}

// ─── Transport (inbound decoded messages) ───

// TransportConfig configures the channel that delivers decoded radio status
// records to the adapter.
type TransportConfig struct {
	Type string              `mapstructure:"type"` // "mqtt"
	MQTT MQTTTransportConfig `mapstructure:"mqtt"`
}

// MQTTTransportConfig contains MQTT-specific transport settings.
type MQTTTransportConfig struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"` // empty = random
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	QoS      byte   `mapstructure:"qos"`
}

// ─── Publication Sinks ───

// SinkConfig describes one outbound publication sink. Options are decoded by
// the sink factory into the sink's own typed config.
type SinkConfig struct {
	Type    string         `mapstructure:"type"` // console | kafka | mqtt
	Options map[string]any `mapstructure:"options"`
}

// ─── Diagnostics ───

// DiagnosticsConfig configures the periodic health report runner.
type DiagnosticsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// ─── Metrics ───

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Logging ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug | info | warn | error
	Format  string           `mapstructure:"format"` // json | text
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains log output settings. Stdout is always enabled.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig contains rotating file output settings.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig contains log rotation settings (lumberjack).
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

type configRoot struct {
	Rlmon GlobalConfig `mapstructure:"rlmon"`
}

// Load loads configuration from file.
// The YAML file uses `rlmon:` as root key; env vars use RLMON_ prefix
// (e.g., RLMON_LOG_LEVEL overrides rlmon.log.level).
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variable overrides. The `rlmon.` key prefix maps to
	// `RLMON_` via the key replacer (key "rlmon.log.level" → env "RLMON_LOG_LEVEL").
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Rlmon

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "rlmon." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Radio defaults: threshold 40 raw units, 3DR identity '3'/'D'.
	v.SetDefault("rlmon.radio.low_rssi", 40)
	v.SetDefault("rlmon.radio.expected_sysid", '3')
	v.SetDefault("rlmon.radio.expected_compid", 'D')
	v.SetDefault("rlmon.radio.advisory_interval", "30s")

	// Transport defaults
	v.SetDefault("rlmon.transport.type", "mqtt")
	v.SetDefault("rlmon.transport.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("rlmon.transport.mqtt.topic", "telemetry/radio/decoded")
	v.SetDefault("rlmon.transport.mqtt.qos", 0)

	// Diagnostics defaults
	v.SetDefault("rlmon.diagnostics.enabled", true)
	v.SetDefault("rlmon.diagnostics.interval", "1s")

	// Metrics defaults
	v.SetDefault("rlmon.metrics.enabled", true)
	v.SetDefault("rlmon.metrics.listen", ":9273")
	v.SetDefault("rlmon.metrics.path", "/metrics")

	// Log defaults
	v.SetDefault("rlmon.log.level", "info")
	v.SetDefault("rlmon.log.format", "json")
	v.SetDefault("rlmon.log.outputs.file.enabled", false)
	v.SetDefault("rlmon.log.outputs.file.path", "/var/log/rlmon/rlmon.log")
	v.SetDefault("rlmon.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("rlmon.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("rlmon.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("rlmon.log.outputs.file.rotation.compress", true)

	v.SetDefault("rlmon.pid_file", "/var/run/rlmon.pid")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}

	// ── Radio validation ──
	if cfg.Radio.AdvisoryInterval <= 0 {
		cfg.Radio.AdvisoryInterval = 30 * time.Second
	}

	// ── Transport validation ──
	switch cfg.Transport.Type {
	case "mqtt":
		if cfg.Transport.MQTT.Broker == "" {
			return fmt.Errorf("transport.mqtt.broker is required")
		}
		if cfg.Transport.MQTT.Topic == "" {
			return fmt.Errorf("transport.mqtt.topic is required")
		}
		if cfg.Transport.MQTT.QoS > 2 {
			return fmt.Errorf("transport.mqtt.qos must be 0, 1 or 2")
		}
	case "none":
		// Standalone mode: adapter is driven programmatically (tests, embedding).
	default:
		return fmt.Errorf("unsupported transport.type: %s (only 'mqtt' or 'none' supported)", cfg.Transport.Type)
	}

	// ── Sink validation ──
	if len(cfg.Sinks) == 0 {
		cfg.Sinks = []SinkConfig{{Type: "console"}}
	}
	for i, s := range cfg.Sinks {
		switch s.Type {
		case "console", "kafka", "mqtt":
		default:
			return fmt.Errorf("sinks[%d]: unsupported type %q", i, s.Type)
		}
	}

	// ── Diagnostics validation ──
	if cfg.Diagnostics.Enabled && cfg.Diagnostics.Interval <= 0 {
		cfg.Diagnostics.Interval = time.Second
	}

	return nil
}
