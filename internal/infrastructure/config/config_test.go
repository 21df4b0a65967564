package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
host:
  name: "test-desktop"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
  discovery:
    prefix: "homeassistant"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Host.Name != "test-desktop" {
		t.Errorf("Host.Name = %q, want %q", cfg.Host.Name, "test-desktop")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	// Defaults survive a partial file
	if cfg.MQTT.Reconnect.RetryInterval != 1 {
		t.Errorf("MQTT.Reconnect.RetryInterval = %d, want 1", cfg.MQTT.Reconnect.RetryInterval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EmptyBrokerHostIsValid(t *testing.T) {
	// An empty broker host is a startup diagnostic, not a fatal config error.
	content := `
host:
  name: "test-desktop"
mqtt:
  broker:
    host: ""
    port: 1883
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for empty broker host", err)
	}
	if cfg.MQTT.Broker.Host != "" {
		t.Errorf("MQTT.Broker.Host = %q, want empty", cfg.MQTT.Broker.Host)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Host.Name = "desk"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty host name",
			mutate:  func(c *Config) { c.Host.Name = "" },
			wantErr: true,
		},
		{
			name:    "host name with topic characters",
			mutate:  func(c *Config) { c.Host.Name = "my/desk" },
			wantErr: true,
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 0 },
			wantErr: true,
		},
		{
			name:    "empty discovery prefix",
			mutate:  func(c *Config) { c.MQTT.Discovery.Prefix = "" },
			wantErr: true,
		},
		{
			name:    "zero retry interval",
			mutate:  func(c *Config) { c.MQTT.Reconnect.RetryInterval = 0 },
			wantErr: true,
		},
		{
			name: "shortcut without command",
			mutate: func(c *Config) {
				c.Integrations.Shortcuts.Buttons = []ShortcutButton{{ID: "lock"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitiseHostname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Workstation", "workstation"},
		{"dave's laptop", "dave-s-laptop"},
		{"desk.local", "desk-local"},
		{"desk_01", "desk_01"},
	}

	for _, tt := range tests {
		if got := SanitiseHostname(tt.in); got != tt.want {
			t.Errorf("SanitiseHostname(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOSTLINK_MQTT_HOST", "broker.example")
	t.Setenv("HOSTLINK_HOST_NAME", "Override-Host")

	content := `
host:
  name: "test-desktop"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.example")
	}
	if cfg.Host.Name != "override-host" {
		t.Errorf("Host.Name = %q, want %q (sanitised)", cfg.Host.Name, "override-host")
	}
}
