// Package config handles configuration loading and validation for backlight
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppDirName is the directory under the user's config home.
	AppDirName = "backlight-linux"

	ConfigFileName   = "config.yaml"
	ProfileFileName  = "profile.json"
	SettingsFileName = "settings.json"
	LockFileName     = "monitor.lock"

	// EnvPrefix prefixes environment overrides, e.g. BACKLIGHT_POLL_INTERVAL.
	EnvPrefix = "BACKLIGHT"
	// DirEnv overrides the configuration directory.
	DirEnv = "BACKLIGHT_CONFIG_DIR"
)

// Config represents the tool configuration. Profiles and settings live in
// their own JSON documents next to it.
type Config struct {
	// Driver is an explicit path to the keyboard driver executable.
	Driver string `yaml:"driver" mapstructure:"driver"`

	// Power monitor
	PowerSupplyDir  string `yaml:"power_supply_dir" mapstructure:"power_supply_dir"`
	PollInterval    string `yaml:"poll_interval" mapstructure:"poll_interval"`
	RediscoverEvery int    `yaml:"rediscover_every" mapstructure:"rediscover_every"`

	// Watch
	WatchDebounce string `yaml:"watch_debounce" mapstructure:"watch_debounce"`

	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// Dir is the directory the config was loaded from.
	Dir string `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Driver:          "",
		PowerSupplyDir:  "/sys/class/power_supply",
		PollInterval:    "3s",
		RediscoverEvery: 20,
		WatchDebounce:   "500ms",
		LogLevel:        "info",
	}
}

// DefaultDir returns the configuration directory: $BACKLIGHT_CONFIG_DIR,
// else $XDG_CONFIG_HOME/backlight-linux, else ~/.config/backlight-linux.
func DefaultDir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// Load loads configuration from dir/config.yaml and BACKLIGHT_* environment
// variables. A missing file is not an error.
func Load(dir string) (*Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("driver", defaults.Driver)
	v.SetDefault("power_supply_dir", defaults.PowerSupplyDir)
	v.SetDefault("poll_interval", defaults.PollInterval)
	v.SetDefault("rediscover_every", defaults.RediscoverEvery)
	v.SetDefault("watch_debounce", defaults.WatchDebounce)
	v.SetDefault("log_level", defaults.LogLevel)

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Dir = dir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.PowerSupplyDir == "" {
		return fmt.Errorf("power_supply_dir is required")
	}
	if d, err := time.ParseDuration(c.PollInterval); err != nil || d <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration, got %q", c.PollInterval)
	}
	if d, err := time.ParseDuration(c.WatchDebounce); err != nil || d < 0 {
		return fmt.Errorf("watch_debounce must be a duration, got %q", c.WatchDebounce)
	}
	if c.RediscoverEvery <= 0 {
		return fmt.Errorf("rediscover_every must be positive, got %d", c.RediscoverEvery)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// Poll returns the power poll interval.
func (c *Config) Poll() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// Debounce returns the watch debounce delay.
func (c *Config) Debounce() time.Duration {
	d, err := time.ParseDuration(c.WatchDebounce)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

// FilePath returns the path of config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFileName)
}

// ProfilePath returns the path of the profile store.
func (c *Config) ProfilePath() string {
	return filepath.Join(c.Dir, ProfileFileName)
}

// SettingsPath returns the path of the settings document.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFileName)
}

// LockPath returns the path of the monitor's single-instance lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Dir, LockFileName)
}
