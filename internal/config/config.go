// Package config handles bmc2mqtt configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/bmc2mqtt/config.yaml, /etc/bmc2mqtt/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "bmc2mqtt", "config.yaml"))
	}

	paths = append(paths, "/etc/bmc2mqtt/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all bmc2mqtt configuration.
type Config struct {
	MQTT      MQTTConfig    `yaml:"mqtt"`
	IPMI      IPMIConfig    `yaml:"ipmi"`
	Metrics   MetricsConfig `yaml:"metrics"`
	NodeID    string        `yaml:"node_id"`
	DataDir   string        `yaml:"data_dir"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"` // "text" or "json"
}

// MQTTConfig defines the broker connection and discovery settings.
type MQTTConfig struct {
	// Broker is the broker URL (mqtt://host:1883, mqtts://host:8883).
	// Required; startup fails without it.
	Broker   string `yaml:"broker"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// DiscoveryPrefix is the Home Assistant discovery topic prefix.
	DiscoveryPrefix string `yaml:"discovery_prefix"`
}

// IPMIConfig defines how sensor readings are collected.
type IPMIConfig struct {
	// Command is the full command line to run each poll cycle
	// (example: "ipmitool -I lanplus -H 10.0.0.2 -U user -P pass sensor").
	Command string `yaml:"command"`
	// PollIntervalSec is the seconds between poll cycles.
	PollIntervalSec int `yaml:"poll_interval_sec"`
	// TimeoutSec bounds a single command invocation.
	TimeoutSec int `yaml:"timeout_sec"`
}

// MetricsConfig defines the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"` // Default: ":9143"
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration. The MQTT broker URL has no
// default and must be provided.
func Default() *Config {
	return &Config{
		MQTT: MQTTConfig{
			DiscoveryPrefix: "homeassistant",
		},
		IPMI: IPMIConfig{
			Command:         "ipmitool sensor",
			PollIntervalSec: 30,
			TimeoutSec:      30,
		},
		Metrics: MetricsConfig{
			Address: ":9143",
		},
		NodeID:  "ipmi",
		DataDir: ".",
	}
}

// Validate checks the settings that must be present before the poll
// loop starts. It returns the first problem found.
func (c *Config) Validate() error {
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if c.NodeID == "" {
		return fmt.Errorf("node_id must not be empty")
	}
	if c.IPMI.Command == "" {
		return fmt.Errorf("ipmi.command must not be empty")
	}
	if c.IPMI.PollIntervalSec <= 0 {
		return fmt.Errorf("ipmi.poll_interval_sec must be positive, got %d", c.IPMI.PollIntervalSec)
	}
	return nil
}
