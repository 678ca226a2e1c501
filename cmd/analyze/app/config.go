package app

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/das-traffic/corridor/internal/config"
)

// Config is the analyze application configuration.
type Config struct {
	Settings  Settings      `yaml:"settings"`
	Recording Recording     `yaml:"recording"`
	Output    Output        `yaml:"output"`
	Tuning    config.Tuning `yaml:"tuning"`
}

// Settings represents global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// SlogLevel parses the configured log level, defaulting to info.
func (s Settings) SlogLevel() (slog.Level, error) {
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	return level, nil
}

// Recording points at the source recording container.
type Recording struct {
	Path string `yaml:"path"`
}

// Output selects where the run persists its result artifacts. Callers
// needing per-run isolation must supply distinct directories per run.
type Output struct {
	Directory string `yaml:"directory"`
}

// LoadConfig reads the yaml configuration. Tuning values omitted from
// the file keep their defaults, so partial tuning overrides are safe.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	c := Config{Tuning: config.DefaultTuning()}
	if err = yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if c.Recording.Path == "" {
		return nil, fmt.Errorf("no recording path specified in configuration")
	}
	if c.Output.Directory == "" {
		return nil, fmt.Errorf("no output directory specified in configuration")
	}
	if err = c.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	if _, err = c.Settings.SlogLevel(); err != nil {
		return nil, err
	}

	return &c, nil
}
