// Package config loads and saves the bellhop YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/bellhop/internal/core/policy"
)

// FileName is the config file name inside the bellhop home directory.
const FileName = "config.yaml"

// Config represents the bellhop configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Engine    EngineConfig    `yaml:"engine"`
	Redis     RedisConfig     `yaml:"redis"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // empty: <home>/bellhop.db
}

type EngineConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	DefaultPreset string        `yaml:"default_preset"` // policy for tenants that never saved one
	LeaseTTL      time.Duration `yaml:"lease_ttl"`
}

// RedisConfig enables the shared evaluation lease when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type DispatchConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
	Webhooks      Webhooks      `yaml:"webhooks"`
}

// Webhooks maps each delivery channel to an endpoint. Channels without a URL are logged only.
type Webhooks struct {
	Push      string `yaml:"push,omitempty"`
	SMS       string `yaml:"sms,omitempty"`
	Email     string `yaml:"email,omitempty"`
	Dashboard string `yaml:"dashboard,omitempty"`
	Broadcast string `yaml:"broadcast,omitempty"`
}

type AnalyticsConfig struct {
	Window time.Duration `yaml:"window"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			PollInterval:  5 * time.Second,
			DefaultPreset: string(policy.PresetStandard),
			LeaseTTL:      30 * time.Second,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Log:  LogConfig{Level: "info"},
		Dispatch: DispatchConfig{
			Timeout:       10 * time.Second,
			RatePerSecond: 20,
			Burst:         40,
		},
		Analytics: AnalyticsConfig{Window: 7 * 24 * time.Hour},
	}
}

// LoadConfig reads the config at path layered over Default().
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path, creating the directory if needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail far from their source.
func (c *Config) Validate() error {
	if c.Engine.PollInterval <= 0 {
		return fmt.Errorf("engine.poll_interval must be positive")
	}
	if c.Engine.LeaseTTL <= 0 {
		return fmt.Errorf("engine.lease_ttl must be positive")
	}
	preset, err := policy.ParsePreset(c.Engine.DefaultPreset)
	if err != nil || preset == policy.PresetCustom {
		return fmt.Errorf("engine.default_preset %q is not a preset", c.Engine.DefaultPreset)
	}
	if c.Dispatch.Timeout <= 0 {
		return fmt.Errorf("dispatch.timeout must be positive")
	}
	if c.Dispatch.RatePerSecond < 0 || c.Dispatch.Burst < 0 {
		return fmt.Errorf("dispatch.rate_per_second and dispatch.burst must not be negative")
	}
	if c.Analytics.Window <= 0 {
		return fmt.Errorf("analytics.window must be positive")
	}
	return nil
}

// DefaultPreset returns Engine.DefaultPreset as a policy preset.
func (c *Config) DefaultPreset() policy.Preset {
	return policy.Preset(c.Engine.DefaultPreset)
}
