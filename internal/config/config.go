package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	LogLevel     string              `yaml:"log_level"`
	IngestDir    string              `yaml:"ingest_dir"`
	WebhookURL   string              `yaml:"webhook_url"`
	CacheDir     string              `yaml:"cache_dir"`
	Ledger       LedgerConfig        `yaml:"ledger"`
	Tracing      TracingConfig       `yaml:"tracing"`
	Tracking     StoreConfig         `yaml:"tracking"`
	Destinations []DestinationConfig `yaml:"destinations"`
	ReloadWindow ReloadWindowConfig  `yaml:"reload_window"`
}

type LedgerConfig struct {
	RedisURL string `yaml:"redis_url"`
}

type TracingConfig struct {
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

type StoreConfig struct {
	Driver             string `yaml:"driver"`
	DSN                string `yaml:"dsn"`
	ReloadURL          string `yaml:"reload_url"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMin int    `yaml:"conn_max_lifetime_min"`
}

func (s StoreConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(s.ConnMaxLifetimeMin) * time.Minute
}

type DestinationConfig struct {
	Name        string  `yaml:"name"`
	Ratio       float64 `yaml:"ratio"`
	StoreConfig `yaml:",inline"`
}

// ReloadWindowConfig bounds the once-daily window during which reload URLs
// are triggered: local hour == Hour and minute < MaxMinute.
type ReloadWindowConfig struct {
	Hour      int `yaml:"hour"`
	MaxMinute int `yaml:"max_minute"`
}

func defaultStore() StoreConfig {
	return StoreConfig{
		Driver:             DriverMySQL,
		MaxOpenConns:       10,
		MaxIdleConns:       2,
		ConnMaxLifetimeMin: 30,
	}
}

func defaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		CacheDir:     ".cache",
		Tracking:     defaultStore(),
		ReloadWindow: ReloadWindowConfig{Hour: 4, MaxMinute: 10},
	}
}

// Load reads the YAML config file named by CONFIG_PATH (default
// config.yaml) and applies env overrides.
func Load() (*Config, error) {
	return LoadFile(getEnv("CONFIG_PATH", "config.yaml"))
}

func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CacheDir = getEnv("CACHE_DIR", cfg.CacheDir)

	for i := range cfg.Destinations {
		d := &cfg.Destinations[i]
		if d.Driver == "" {
			d.Driver = DriverMySQL
		}
		if d.MaxOpenConns == 0 {
			d.MaxOpenConns = 10
		}
		if d.MaxIdleConns == 0 {
			d.MaxIdleConns = 2
		}
		if d.ConnMaxLifetimeMin == 0 {
			d.ConnMaxLifetimeMin = 30
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Tracking.DSN == "" {
		return fmt.Errorf("tracking.dsn is required")
	}
	if err := validDriver(c.Tracking.Driver); err != nil {
		return fmt.Errorf("tracking: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Destinations))
	for i, d := range c.Destinations {
		if d.Name == "" {
			return fmt.Errorf("destinations[%d]: name is required", i)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("destinations[%d]: duplicate name %q", i, d.Name)
		}
		seen[d.Name] = struct{}{}
		if d.DSN == "" {
			return fmt.Errorf("destination %s: dsn is required", d.Name)
		}
		if err := validDriver(d.Driver); err != nil {
			return fmt.Errorf("destination %s: %w", d.Name, err)
		}
		if d.Ratio < 0 || d.Ratio > 1 {
			return fmt.Errorf("destination %s: ratio %v out of range [0,1]", d.Name, d.Ratio)
		}
	}
	if c.ReloadWindow.Hour < 0 || c.ReloadWindow.Hour > 23 {
		return fmt.Errorf("reload_window.hour %d out of range", c.ReloadWindow.Hour)
	}
	if c.ReloadWindow.MaxMinute < 0 || c.ReloadWindow.MaxMinute > 60 {
		return fmt.Errorf("reload_window.max_minute %d out of range", c.ReloadWindow.MaxMinute)
	}
	return nil
}

func validDriver(driver string) error {
	switch driver {
	case DriverMySQL, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
}

// ReloadURLs collects the configured reload URLs in trigger order: the
// tracking store first, then each destination in configured order.
func (c *Config) ReloadURLs() []string {
	urls := make([]string, 0, len(c.Destinations)+1)
	if c.Tracking.ReloadURL != "" {
		urls = append(urls, c.Tracking.ReloadURL)
	}
	for _, d := range c.Destinations {
		if d.ReloadURL != "" {
			urls = append(urls, d.ReloadURL)
		}
	}
	return urls
}

// FileMode reports whether the source reader should scan an export
// directory instead of measuring tracking-store growth.
func (c *Config) FileMode() bool { return c.IngestDir != "" }

func (c *Config) LedgerPath() string  { return filepath.Join(c.CacheDir, "accounts.csv") }
func (c *Config) CounterPath() string { return filepath.Join(c.CacheDir, "lastCount.txt") }
func (c *Config) StatsPath() string   { return filepath.Join(c.CacheDir, "stats.json") }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
