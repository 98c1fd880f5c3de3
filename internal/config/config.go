package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/patrickspencer/cronpeek/internal/scheduler"
)

// Output formats accepted by the output setting.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Color modes accepted by the color setting.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// MaxCount is the largest number of occurrences that may be requested.
const MaxCount = 100

// Config is the user configuration parsed from config.yaml.
type Config struct {
	Count      int              `yaml:"count"`
	Timezone   string           `yaml:"timezone"`
	Output     string           `yaml:"output"`
	Color      string           `yaml:"color"`
	AliasesDir string           `yaml:"aliases_dir"`
	Aliases    map[string]Alias `yaml:"aliases"`
}

func applyDefaults(c *Config) {
	if c.Count == 0 {
		c.Count = 5
	}
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	if c.Output == "" {
		c.Output = OutputTable
	}
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	if c.Color == "" {
		c.Color = ColorAuto
	}
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.AliasesDir != "" {
		c.AliasesDir = expandPath(c.AliasesDir)
	}
	if c.Aliases == nil {
		c.Aliases = make(map[string]Alias)
	}
	for name, a := range c.Aliases {
		a.Name = name
		a.Schedule = strings.TrimSpace(a.Schedule)
		c.Aliases[name] = a
	}
}

// DefaultPath returns ~/.config/cronpeek/config.yaml, or a relative
// cronpeek.yaml when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "cronpeek.yaml"
	}
	return filepath.Join(home, ".config", "cronpeek", "config.yaml")
}

func expandPath(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return value
	}

	v = os.ExpandEnv(v)

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v
	}

	if v == "~" {
		return home
	}
	if strings.HasPrefix(v, "~/") {
		return filepath.Join(home, v[2:])
	}
	if strings.HasPrefix(v, "~\\") {
		return filepath.Join(home, v[2:])
	}
	return v
}

// Default returns a Config with every field at its default.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// LoadConfig reads a YAML configuration file from path and returns
// a Config with defaults applied for any unset fields. Aliases found in
// aliases_dir are merged into the inline aliases.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if cfg.AliasesDir != "" {
		aliases, err := LoadAliases(cfg.AliasesDir)
		if err != nil {
			return nil, err
		}
		for _, a := range aliases {
			if _, exists := cfg.Aliases[a.Name]; exists {
				return nil, fmt.Errorf("duplicate alias name %q in %s", a.Name, a.FilePath)
			}
			cfg.Aliases[a.Name] = *a
		}
	}
	return &cfg, nil
}

// LoadOrDefault behaves like LoadConfig but returns Default when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Count < 1 || c.Count > MaxCount {
		return fmt.Errorf("count must be between 1 and %d, got %d", MaxCount, c.Count)
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", c.Output)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", c.Color)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for name, a := range c.Aliases {
		if !isSafeAliasName(name) {
			return fmt.Errorf("invalid alias name %q: use only letters, numbers, '.', '-', '_'", name)
		}
		if _, err := scheduler.Parse(a.Schedule); err != nil {
			return fmt.Errorf("alias %q: %w", name, err)
		}
	}
	return nil
}

// Location returns the configured zone for the local time column, or
// nil when the host's local zone should be used.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Resolve maps a command-line argument to a schedule. If arg names an
// alias its schedule and the alias are returned; otherwise arg is
// returned unchanged with a nil alias.
func (c *Config) Resolve(arg string) (string, *Alias) {
	if a, ok := c.Aliases[strings.TrimSpace(arg)]; ok {
		return a.Schedule, &a
	}
	return arg, nil
}
