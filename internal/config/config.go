// Package config loads tagform's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tagform configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Filters FiltersConfig `yaml:"filters"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	ReadTimeout string `yaml:"read_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// FiltersConfig configures filter inputs and query variables.
type FiltersConfig struct {
	AllVisible bool   `yaml:"all_visible"`
	Timezone   string `yaml:"timezone"` // IANA name calendar dates are read in
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			ReadTimeout: "10s",
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
		Filters: FiltersConfig{
			AllVisible: false,
			Timezone:   "UTC",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("TAGFORM_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("TAGFORM_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if tz := os.Getenv("TAGFORM_TIMEZONE"); tz != "" {
		c.Filters.Timezone = tz
	}
}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validLevel := false
	for _, l := range ValidLevels {
		if strings.EqualFold(c.Logging.Level, l) {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if _, err := c.GetReadTimeout(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// GetReadTimeout parses the server read timeout.
func (c *Config) GetReadTimeout() (time.Duration, error) {
	if c.Server.ReadTimeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Server.ReadTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid read_timeout %q: %w", c.Server.ReadTimeout, err)
	}
	return d, nil
}

// Location loads the filter time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Filters.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Filters.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Filters.Timezone, err)
	}
	return loc, nil
}
