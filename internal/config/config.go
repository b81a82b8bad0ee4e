// Package config loads layered referer-parser configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/referer-parser/configs"
)

// Output formats accepted by classify.format.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Project config file names, checked in order.
var projectFiles = []string{".referer-parser.yaml", ".referer-parser.yml"}

// Config is the full referer-parser configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Data     DataConfig     `yaml:"data"`
	Classify ClassifyConfig `yaml:"classify"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Sources lists the files that were merged, lowest precedence first.
	Sources []string `yaml:"-"`
}

// DataConfig selects the referer dataset.
type DataConfig struct {
	// Path to a referers dataset. Empty uses the embedded dataset.
	Path string `yaml:"path"`
	// InternalDomains are classified with medium "internal".
	InternalDomains []string `yaml:"internal_domains"`
	// Watch reloads Path when it changes (stream command).
	Watch bool `yaml:"watch"`
}

// ClassifyConfig tunes classification.
type ClassifyConfig struct {
	CacheSize int    `yaml:"cache_size"`
	Workers   int    `yaml:"workers"` // 0 = NumCPU
	Format    string `yaml:"format"`
}

// LoggingConfig sets the stderr log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Classify: ClassifyConfig{
			CacheSize: 4096,
			Workers:   0,
			Format:    FormatText,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/referer-parser/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/referer-parser/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "referer-parser", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "referer-parser", "config.yaml")
	}
	return filepath.Join(home, ".config", "referer-parser", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// FindProjectConfig returns the project config file in dir, or "".
func FindProjectConfig(dir string) string {
	for _, name := range projectFiles {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// Load loads configuration for the working directory dir, in order of
// increasing precedence:
//  1. Defaults
//  2. User config (~/.config/referer-parser/config.yaml)
//  3. Project config (.referer-parser.yaml in dir)
//  4. Environment variables (REFPARSER_*)
//
// Command-line flags are applied by the caller on top of the result.
func Load(dir string) (*Config, error) {
	return load(dir, "")
}

// LoadFile is Load with explicit replacing the user and project files.
func LoadFile(explicit string) (*Config, error) {
	return load("", explicit)
}

func load(dir, explicit string) (*Config, error) {
	cfg := NewConfig()

	if explicit != "" {
		if err := cfg.loadYAML(explicit); err != nil {
			return nil, err
		}
	} else {
		if path := GetUserConfigPath(); fileExists(path) {
			if err := cfg.loadYAML(path); err != nil {
				return nil, fmt.Errorf("load user config: %w", err)
			}
		}
		if path := FindProjectConfig(dir); path != "" {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadYAML merges the file at path into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	c.Sources = append(c.Sources, path)
	return nil
}

// ErrNotFound is returned when an explicitly named config file is missing.
var ErrNotFound = errors.New("config file not found")

// mergeWith merges set values from other into c. A boolean can only be
// switched on by a file; use the environment to switch it off.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Data.Path != "" {
		c.Data.Path = other.Data.Path
	}
	if len(other.Data.InternalDomains) > 0 {
		c.Data.InternalDomains = other.Data.InternalDomains
	}
	if other.Data.Watch {
		c.Data.Watch = true
	}

	if other.Classify.CacheSize != 0 {
		c.Classify.CacheSize = other.Classify.CacheSize
	}
	if other.Classify.Workers != 0 {
		c.Classify.Workers = other.Classify.Workers
	}
	if other.Classify.Format != "" {
		c.Classify.Format = other.Classify.Format
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
}

// applyEnvOverrides applies REFPARSER_* environment variables. Malformed
// numbers and booleans are reported rather than ignored.
func (c *Config) applyEnvOverrides() error {
	if v, ok := os.LookupEnv("REFPARSER_DATA_PATH"); ok {
		c.Data.Path = strings.TrimSpace(v)
	}
	if v := os.Getenv("REFPARSER_INTERNAL_DOMAINS"); v != "" {
		c.Data.InternalDomains = splitList(v)
	}
	if v := os.Getenv("REFPARSER_WATCH"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("REFPARSER_WATCH: %w", err)
		}
		c.Data.Watch = b
	}
	if v := os.Getenv("REFPARSER_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("REFPARSER_CACHE_SIZE: %w", err)
		}
		c.Classify.CacheSize = n
	}
	if v := os.Getenv("REFPARSER_WORKERS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("REFPARSER_WORKERS: %w", err)
		}
		c.Classify.Workers = n
	}
	if v := os.Getenv("REFPARSER_FORMAT"); v != "" {
		c.Classify.Format = strings.TrimSpace(v)
	}
	if v := os.Getenv("REFPARSER_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.TrimSpace(v)
	}
	return nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool {
	switch strings.ToLower(f) {
	case FormatText, FormatJSON, FormatJSONL:
		return true
	}
	return false
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Classify.CacheSize < 0 {
		return fmt.Errorf("classify.cache_size must be non-negative, got %d", c.Classify.CacheSize)
	}
	if c.Classify.Workers < 0 {
		return fmt.Errorf("classify.workers must be non-negative, got %d", c.Classify.Workers)
	}
	if !ValidFormat(c.Classify.Format) {
		return fmt.Errorf("classify.format must be 'text', 'json' or 'jsonl', got %s", c.Classify.Format)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	for _, d := range c.Data.InternalDomains {
		if strings.TrimSpace(d) == "" {
			return errors.New("data.internal_domains must not contain empty entries")
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// WriteTemplate writes the commented example configuration to path,
// creating its directory.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
