package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for HostLink.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Host         HostConfig         `yaml:"host"`
	Database     DatabaseConfig     `yaml:"database"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	InfluxDB     InfluxDBConfig     `yaml:"influxdb"`
	Logging      LoggingConfig      `yaml:"logging"`
	Integrations IntegrationsConfig `yaml:"integrations"`
}

// HostConfig identifies this machine to the hub.
// Name becomes the first topic segment for every entity owned by this bridge,
// so it must be stable across restarts.
type HostConfig struct {
	Name         string `yaml:"name"`
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
}

// DatabaseConfig contains SQLite settings-store options.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Discovery MQTTDiscoveryConfig `yaml:"discovery"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTDiscoveryConfig controls hub auto-discovery announcements.
type MQTTDiscoveryConfig struct {
	// Prefix is the discovery topic root the hub watches.
	// Home Assistant's default is "homeassistant".
	Prefix string `yaml:"prefix"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
// RetryInterval is deliberately fixed (no backoff): the bridge favours
// eventual consistency with the hub over failing fast. KeepAlive is
// deliberately short so broker-side availability degrades quickly after
// the process becomes unresponsive (e.g. system suspend).
type MQTTReconnectConfig struct {
	RetryInterval int `yaml:"retry_interval"`
	KeepAlive     int `yaml:"keep_alive"`
}

// InfluxDBConfig contains the optional state-history recorder settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// IntegrationsConfig holds the per-integration settings sections.
// Enable/disable flags do NOT live here - those are reconciled into the
// settings store by the integration registry (see internal/integration).
type IntegrationsConfig struct {
	Battery    BatteryConfig    `yaml:"battery"`
	Containers ContainersConfig `yaml:"containers"`
	Audio      AudioConfig      `yaml:"audio"`
	NightMode  NightModeConfig  `yaml:"night_mode"`
	Media      MediaConfig      `yaml:"media"`
	Shortcuts  ShortcutsConfig  `yaml:"shortcuts"`
}

// BatteryConfig contains battery watcher settings.
type BatteryConfig struct {
	// SysPath is the power-supply class directory to scan.
	SysPath string `yaml:"sys_path"`
	// PollInterval is the refresh period in seconds.
	PollInterval int `yaml:"poll_interval"`
}

// ContainersConfig contains container watcher settings.
type ContainersConfig struct {
	// Runtime is the container CLI to drive: "docker" or "podman".
	Runtime string `yaml:"runtime"`
	// PollInterval is the refresh period in seconds.
	PollInterval int `yaml:"poll_interval"`
}

// AudioConfig contains audio mixer settings.
type AudioConfig struct {
	// Mixer is the command-line mixer frontend. Only "pactl" is supported.
	Mixer string `yaml:"mixer"`
	// PollInterval is the refresh period in seconds.
	PollInterval int `yaml:"poll_interval"`
}

// NightModeConfig contains night-light toggle settings.
type NightModeConfig struct {
	// Schema and Key locate the desktop setting driven by the switch.
	Schema string `yaml:"schema"`
	Key    string `yaml:"key"`
}

// MediaConfig contains media-player aggregation settings.
type MediaConfig struct {
	// PollInterval is the refresh period in seconds.
	PollInterval int `yaml:"poll_interval"`
}

// ShortcutsConfig contains user-defined shortcut buttons.
type ShortcutsConfig struct {
	Buttons []ShortcutButton `yaml:"buttons"`
}

// ShortcutButton is one config-defined button entity.
type ShortcutButton struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Supported environment overrides are the deployment-sensitive values:
// HOSTLINK_HOST_NAME, HOSTLINK_DATABASE_PATH, HOSTLINK_MQTT_HOST,
// HOSTLINK_MQTT_USERNAME, HOSTLINK_MQTT_PASSWORD, HOSTLINK_INFLUXDB_TOKEN.
// Everything else is file-only.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
// The host name defaults to the machine hostname, sanitised for topic use.
func Default() *Config {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "hostlink"
	}
	hostname = SanitiseHostname(hostname)

	return &Config{
		Host: HostConfig{
			Name:         hostname,
			Manufacturer: "HostLink",
			Model:        "Desktop Bridge",
		},
		Database: DatabaseConfig{
			Path:        "./data/hostlink.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hostlink-" + hostname,
			},
			QoS: 1,
			Discovery: MQTTDiscoveryConfig{
				Prefix: "homeassistant",
			},
			Reconnect: MQTTReconnectConfig{
				RetryInterval: 1,
				KeepAlive:     5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Integrations: IntegrationsConfig{
			Battery: BatteryConfig{
				SysPath:      "/sys/class/power_supply",
				PollInterval: 30,
			},
			Containers: ContainersConfig{
				Runtime:      "docker",
				PollInterval: 15,
			},
			Audio: AudioConfig{
				Mixer:        "pactl",
				PollInterval: 5,
			},
			NightMode: NightModeConfig{
				Schema: "org.gnome.settings-daemon.plugins.color",
				Key:    "night-light-enabled",
			},
			Media: MediaConfig{
				PollInterval: 2,
			},
		},
	}
}

// SanitiseHostname lowers the hostname and replaces characters that are not
// topic-safe. Topic derivation depends on this being deterministic.
func SanitiseHostname(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}

// applyEnvOverrides applies environment variable overrides for the
// deployment-sensitive values: host identity, database location, broker
// address, and credentials. Tuning knobs stay file-only.
func applyEnvOverrides(cfg *Config) {
	// Host
	if v := os.Getenv("HOSTLINK_HOST_NAME"); v != "" {
		cfg.Host.Name = SanitiseHostname(v)
	}

	// Database
	if v := os.Getenv("HOSTLINK_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("HOSTLINK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOSTLINK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOSTLINK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("HOSTLINK_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// An empty mqtt.broker.host is deliberately NOT a validation error: the
// connection supervisor reports it as a startup diagnostic and stays
// disconnected while the rest of the bridge keeps running.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Host validation
	if c.Host.Name == "" {
		errs = append(errs, "host.name is required")
	}
	if strings.ContainsAny(c.Host.Name, "+#/") {
		errs = append(errs, "host.name must not contain MQTT topic characters (+, #, /)")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Discovery.Prefix == "" {
		errs = append(errs, "mqtt.discovery.prefix is required")
	}
	if c.MQTT.Reconnect.RetryInterval < 1 {
		errs = append(errs, "mqtt.reconnect.retry_interval must be at least 1 second")
	}

	// Shortcuts validation
	for i, b := range c.Integrations.Shortcuts.Buttons {
		if b.ID == "" || len(b.Command) == 0 {
			errs = append(errs, fmt.Sprintf("integrations.shortcuts.buttons[%d] requires id and command", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRetryInterval returns the reconnect retry interval as a Duration.
func (c *Config) GetRetryInterval() time.Duration {
	return time.Duration(c.MQTT.Reconnect.RetryInterval) * time.Second
}

// GetKeepAlive returns the MQTT keep-alive as a Duration.
func (c *Config) GetKeepAlive() time.Duration {
	return time.Duration(c.MQTT.Reconnect.KeepAlive) * time.Second
}
