package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName is used for the config and data directory names
const AppName = "phrasecounter"

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	// Driver is one of "file", "bolt", "redis" or "memory"
	Driver string `yaml:"driver"`

	// DataDir holds the collection files (file driver) or the database (bolt driver)
	DataDir string `yaml:"data_dir"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds connection settings for the redis driver
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// CountingConfig controls counter and timer behavior
type CountingConfig struct {
	// AllowNegative lets decrement take a count below zero
	AllowNegative bool `yaml:"allow_negative"`

	// TickInterval is the session timer period (e.g. "1s")
	TickInterval string `yaml:"tick_interval"`

	// WindowSize is the number of samples kept per phrase for the chart
	WindowSize int `yaml:"window_size"`
}

// LoggingConfig controls zerolog output
type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the optional Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint
	Addr string `yaml:"addr"`
}

// Config holds the application configuration
type Config struct {
	// Theme is the catppuccin flavor to use (mocha, macchiato, frappe, latte)
	Theme string `yaml:"theme"`

	Storage  StorageConfig  `yaml:"storage"`
	Counting CountingConfig `yaml:"counting"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Theme: "mocha",
		Storage: StorageConfig{
			Driver:  "file",
			DataDir: defaultDataDir(),
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "phrasecounter:",
			},
		},
		Counting: CountingConfig{
			AllowNegative: true,
			TickInterval:  "1s",
			WindowSize:    180,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   filepath.Join(defaultDataDir(), "phrasecounter.log"),
			Format: "json",
		},
	}
}

// defaultDataDir follows XDG_DATA_HOME, falling back to ~/.local/share
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", AppName)
}

// Load reads the config from a YAML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //nolint:gosec // config path from known locations
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDefaultPath attempts to load config from standard locations
func LoadFromDefaultPath() (*Config, error) {
	// Check in order: current dir, ~/.config/phrasecounter/, XDG_CONFIG_HOME
	paths := []string{
		"config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", AppName, "config.yaml"),
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, AppName, "config.yaml"))
	}

	for _, path := range paths {
		cleanPath := filepath.Clean(path)
		if _, err := os.Stat(cleanPath); err == nil { //nolint:gosec // config path from known locations
			return Load(cleanPath)
		}
	}

	return DefaultConfig(), nil
}

// TickInterval returns the parsed timer period, defaulting to one second
func (c *Config) TickInterval() time.Duration {
	d, err := time.ParseDuration(c.Counting.TickInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// WindowSize returns the sample window capacity, defaulting to 180
func (c *Config) WindowSize() int {
	if c.Counting.WindowSize <= 0 {
		return 180
	}
	return c.Counting.WindowSize
}
