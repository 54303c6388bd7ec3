// Package config provides configuration loading from YAML files.
package config

import (
	"io/fs"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Library  LibraryConfig  `yaml:"library"`
	Playback PlaybackConfig `yaml:"playback"`
	Output   OutputConfig   `yaml:"output"`
}

// LibraryConfig represents audio library configuration.
type LibraryConfig struct {
	Root          string `yaml:"root" default:"audio" validate:"required"`
	ProbeDuration bool   `yaml:"probe_duration"`
}

// PlaybackConfig represents playback engine configuration.
type PlaybackConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms" default:"20" validate:"gte=1,lte=1000"`
	EventBuffer    int `yaml:"event_buffer" default:"10" validate:"gte=1,lte=1024"`
}

// OutputConfig represents audio output configuration.
type OutputConfig struct {
	Driver   string         `yaml:"driver" default:"speaker" validate:"oneof=speaker null"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Default returns a configuration with every field at its default value,
// after environment overrides.
func Default() *Config {
	var cfg Config
	cfg.overrideFromEnv()
	// Only fails on malformed default tags.
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist.
// The second result reports whether the file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, false, errors.Wrap(err, "config validation failed")
		}
		return cfg, false, nil
	}
	return nil, false, err
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("BLACKHAND_AUDIO_ROOT"); v != "" {
		c.Library.Root = v
	}
	if v := os.Getenv("BLACKHAND_OUTPUT_DRIVER"); v != "" {
		c.Output.Driver = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// PollInterval returns the worker pause poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Playback.PollIntervalMs) * time.Millisecond
}
