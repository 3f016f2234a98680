package dns

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "DNSPROP"

// Config holds all configuration options
type Config struct {
	Listen        string         `yaml:"listen" mapstructure:"listen"`
	VantagePoints []VantagePoint `yaml:"vantage_points" mapstructure:"vantage_points"`
	Lookup        LookupConfig   `yaml:"lookup" mapstructure:"lookup"`
	Probe         ProbeConfig    `yaml:"probe" mapstructure:"probe"`
	Defaults      DefaultsConfig `yaml:"defaults" mapstructure:"defaults"`
	Server        ServerConfig   `yaml:"server" mapstructure:"server"`
	Log           LogConfig      `yaml:"log" mapstructure:"log"`
}

type LookupConfig struct {
	Backend      string   `yaml:"backend" mapstructure:"backend"`
	Endpoint     string   `yaml:"endpoint" mapstructure:"endpoint"`
	DoHProviders []string `yaml:"doh_providers" mapstructure:"doh_providers"`
}

type ProbeConfig struct {
	Strategy  string  `yaml:"strategy" mapstructure:"strategy"`
	Workers   int     `yaml:"workers" mapstructure:"workers"`
	Delay     string  `yaml:"delay" mapstructure:"delay"`
	Timeout   string  `yaml:"timeout" mapstructure:"timeout"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

type DefaultsConfig struct {
	RecordType string `yaml:"record_type" mapstructure:"record_type"`
}

type ServerConfig struct {
	MaxSessions int `yaml:"max_sessions" mapstructure:"max_sessions"`
}

type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
	File        string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig provides sensible defaults for all configuration options.
var DefaultConfig = Config{
	Listen:        ":8080",
	VantagePoints: DefaultVantagePoints,
	Lookup: LookupConfig{
		Backend:      BackendUDP,
		DoHProviders: []string{"google"},
	},
	Probe: ProbeConfig{
		Strategy: StrategySequential,
		Workers:  4,
		Delay:    "300ms",
		Timeout:  "5s",
	},
	Defaults: DefaultsConfig{
		RecordType: "A",
	},
	Server: ServerConfig{
		MaxSessions: 100,
	},
	Log: LogConfig{
		Level: "info",
	},
}

// SaveConfig writes the config to a YAML file.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}

// LoadConfig layers a YAML file and DNSPROP_* environment variables over cfg.
// Keys missing from both keep the value already in cfg. An empty path applies
// the environment only.
func LoadConfig(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", cfg.Listen)
	v.SetDefault("vantage_points", cfg.VantagePoints)
	v.SetDefault("lookup.backend", cfg.Lookup.Backend)
	v.SetDefault("lookup.endpoint", cfg.Lookup.Endpoint)
	v.SetDefault("lookup.doh_providers", cfg.Lookup.DoHProviders)
	v.SetDefault("probe.strategy", cfg.Probe.Strategy)
	v.SetDefault("probe.workers", cfg.Probe.Workers)
	v.SetDefault("probe.delay", cfg.Probe.Delay)
	v.SetDefault("probe.timeout", cfg.Probe.Timeout)
	v.SetDefault("probe.rate_limit", cfg.Probe.RateLimit)
	v.SetDefault("defaults.record_type", cfg.Defaults.RecordType)
	v.SetDefault("server.max_sessions", cfg.Server.MaxSessions)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.file", cfg.Log.File)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	*cfg = loaded
	return nil
}

// Validate checks values that cannot be caught by decoding alone.
func (c *Config) Validate() error {
	if len(c.VantagePoints) == 0 {
		return fmt.Errorf("no vantage points configured")
	}
	for i, p := range c.VantagePoints {
		if p.Name == "" {
			return fmt.Errorf("vantage point %d: name is required", i)
		}
		if p.Resolver == "" {
			return fmt.Errorf("vantage point %q: resolver is required", p.Name)
		}
		region, err := ParseRegion(string(p.Region))
		if err != nil {
			return fmt.Errorf("vantage point %q: %w", p.Name, err)
		}
		c.VantagePoints[i].Region = region
	}

	switch strings.ToLower(c.Lookup.Backend) {
	case "", BackendUDP, BackendDoH:
	case BackendHTTP:
		if c.Lookup.Endpoint == "" {
			return fmt.Errorf("lookup backend http requires lookup.endpoint")
		}
	default:
		return fmt.Errorf("unknown lookup backend %q", c.Lookup.Backend)
	}
	if _, err := ParseDoHProviders(c.Lookup.DoHProviders); err != nil {
		return err
	}

	if _, err := ParseStrategy(c.Probe.Strategy); err != nil {
		return err
	}
	if _, err := c.ProbeDelay(); err != nil {
		return err
	}
	if _, err := c.ProbeTimeout(); err != nil {
		return err
	}
	if c.Probe.RateLimit < 0 {
		return fmt.Errorf("probe.rate_limit must not be negative")
	}
	if _, err := ParseRecordType(c.Defaults.RecordType); err != nil {
		return fmt.Errorf("defaults.record_type: %w", err)
	}
	return nil
}

// ProbeDelay parses the pacing delay between sequential lookups.
func (c *Config) ProbeDelay() (time.Duration, error) {
	return parseDuration("probe.delay", c.Probe.Delay, 0)
}

// ProbeTimeout parses the per-point lookup timeout.
func (c *Config) ProbeTimeout() (time.Duration, error) {
	return parseDuration("probe.timeout", c.Probe.Timeout, 5*time.Second)
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

// ProberOptions turns the probe section into Prober options.
func (c *Config) ProberOptions() ([]Option, error) {
	strategy, err := ParseStrategy(c.Probe.Strategy)
	if err != nil {
		return nil, err
	}
	delay, err := c.ProbeDelay()
	if err != nil {
		return nil, err
	}
	timeout, err := c.ProbeTimeout()
	if err != nil {
		return nil, err
	}
	return []Option{
		WithStrategy(strategy),
		WithWorkers(c.Probe.Workers),
		WithDelay(delay),
		WithTimeout(timeout),
		WithRateLimit(c.Probe.RateLimit),
	}, nil
}
