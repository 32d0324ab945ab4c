package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Tuning knobs that rarely change between deployments.
type YAMLConfig struct {
	Realtime RealtimeConfig `yaml:"realtime"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

// RealtimeConfig tunes the WebSocket layer.
type RealtimeConfig struct {
	PingInterval     time.Duration `yaml:"ping_interval"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	ConnectWindow    time.Duration `yaml:"connect_window"` // Rate-limit window per client address
	ConnectMax       int           `yaml:"connect_max"`    // Connections allowed per window
}

// JobsConfig tunes background jobs.
type JobsConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	ExpiredGrace  time.Duration `yaml:"expired_grace"` // How long expired public links are kept
}

// DefaultYAMLConfig returns the settings used when no file is present.
func DefaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		Realtime: RealtimeConfig{
			PingInterval:     25 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			ConnectWindow:    60 * time.Second,
			ConnectMax:       20,
		},
		Jobs: JobsConfig{
			SweepInterval: 10 * time.Minute,
			ExpiredGrace:  7 * 24 * time.Hour,
		},
	}
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns the defaults without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return loadYAMLConfig(getEnv("CONFIG_FILE", "config.yaml"))
}

func loadYAMLConfig(path string) (*YAMLConfig, error) {
	cfg := DefaultYAMLConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return cfg, nil
		}
		return nil, err
	}

	var file YAMLConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	// Zero values keep the defaults
	if file.Realtime.PingInterval > 0 {
		cfg.Realtime.PingInterval = file.Realtime.PingInterval
	}
	if file.Realtime.HandshakeTimeout > 0 {
		cfg.Realtime.HandshakeTimeout = file.Realtime.HandshakeTimeout
	}
	if file.Realtime.ConnectWindow > 0 {
		cfg.Realtime.ConnectWindow = file.Realtime.ConnectWindow
	}
	if file.Realtime.ConnectMax > 0 {
		cfg.Realtime.ConnectMax = file.Realtime.ConnectMax
	}
	if file.Jobs.SweepInterval > 0 {
		cfg.Jobs.SweepInterval = file.Jobs.SweepInterval
	}
	if file.Jobs.ExpiredGrace > 0 {
		cfg.Jobs.ExpiredGrace = file.Jobs.ExpiredGrace
	}

	return cfg, nil
}
