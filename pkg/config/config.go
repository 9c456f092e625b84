// Package config handles loading and saving trackr configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/trackr/config.yaml
//   - Data:    ~/.local/share/trackr/ (imported databases)
//
// Values resolve in order: built-in defaults, the YAML file, then the
// TRACKR_* environment variables. Command-line flags are applied last by
// the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/trackr/pkg/model"
)

// Environment variables that override file values.
const (
	EnvDataset  = "TRACKR_DATASET"
	EnvAddr     = "TRACKR_ADDR"
	EnvLogLevel = "TRACKR_LOG_LEVEL"
)

// DatasetConfig locates the estimates file.
type DatasetConfig struct {
	Path         string        `yaml:"path,omitempty"`
	Watch        bool          `yaml:"watch"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// DefaultsConfig is the initial chart selection.
type DefaultsConfig struct {
	Entities       []string `yaml:"entities,omitempty"`
	DaysInfectious int      `yaml:"days_infectious,omitempty"`
	Bounds         []string `yaml:"bounds,flow"`
}

// ParsedBounds returns the configured credible tiers.
func (d DefaultsConfig) ParsedBounds() (model.Bounds, error) {
	return model.ParseBounds(d.Bounds)
}

// ServerConfig controls `trackr serve`.
type ServerConfig struct {
	Addr         string        `yaml:"addr,omitempty"`
	CORSOrigins  []string      `yaml:"cors_origins,omitempty"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`
}

// RenderConfig holds image output settings.
type RenderConfig struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Format string `yaml:"format,omitempty"` // svg or png
	Title  string `yaml:"title,omitempty"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // console or json
}

// Config is the top-level configuration for trackr.
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Server   ServerConfig   `yaml:"server"`
	Render   RenderConfig   `yaml:"render"`
	Log      LogConfig      `yaml:"log"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Dataset: DatasetConfig{
			Path:         "database.csv",
			Watch:        true,
			PollInterval: 2 * time.Second,
		},
		Defaults: DefaultsConfig{
			Entities:       []string{"World"},
			DaysInfectious: 7,
			Bounds:         model.BoundsBoth.Keys(),
		},
		Server: ServerConfig{
			Addr:         ":8050",
			CORSOrigins:  []string{"*"},
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Render: RenderConfig{
			Width:  900,
			Height: 450,
			Format: "svg",
			Title:  "Tracking R",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ConfigDir returns the XDG config directory for trackr.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "trackr")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "trackr")
}

// DataDir returns the XDG data directory for trackr.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "trackr")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "trackr")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path and applies environment
// overrides. Returns DefaultConfig (plus env) if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	cfg.ApplyEnv()
	cfg.Dataset.Path = expandHome(cfg.Dataset.Path)
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from TRACKR_* variables that are set.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDataset)); v != "" {
		c.Dataset.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// Validate rejects values no command can work with.
func (c Config) Validate() error {
	if _, err := c.Defaults.ParsedBounds(); err != nil {
		return fmt.Errorf("defaults.bounds: %w", err)
	}
	switch strings.ToLower(c.Render.Format) {
	case "", "svg", "png":
	default:
		return fmt.Errorf("render.format must be svg or png, got %q", c.Render.Format)
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return fmt.Errorf("render size must not be negative (%dx%d)", c.Render.Width, c.Render.Height)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultDatabasePath is where `trackr import` writes when no target is given.
func DefaultDatabasePath() string {
	dir := DataDir()
	if dir == "" {
		return "estimates.db"
	}
	return filepath.Join(dir, "estimates.db")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
