// Package config loads the formpages service configuration from an optional
// YAML file with environment overrides layered on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvAddr     = "FORMPAGES_ADDR"
	EnvLogLevel = "FORMPAGES_LOG_LEVEL"
	EnvLocale   = "FORMPAGES_LOCALE"
	EnvTheme    = "FORMPAGES_THEME"
)

// Config is the service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Locale  string        `yaml:"locale"`
	Theme   ThemeConfig   `yaml:"theme"`
	Stories StoriesConfig `yaml:"stories"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
	// CSRFToken, when set, is rendered as a hidden input on every form and
	// required on every form post.
	CSRFToken string `yaml:"csrfToken"`
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ThemeConfig picks the go-theme manifest and variant.
type ThemeConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// StoriesConfig toggles the preview harness.
type StoriesConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Log:     LogConfig{Level: "info"},
		Locale:  "en",
		Theme:   ThemeConfig{Name: "uswds"},
		Stories: StoriesConfig{Enabled: true},
	}
}

// Load reads path over the defaults and then applies the environment. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	ApplyEnv(&cfg, os.LookupEnv)
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from the environment lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if v, ok := lookup(EnvAddr); ok && strings.TrimSpace(v) != "" {
		cfg.Server.Addr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		cfg.Log.Level = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLocale); ok && strings.TrimSpace(v) != "" {
		cfg.Locale = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvTheme); ok && strings.TrimSpace(v) != "" {
		name, variant, _ := strings.Cut(strings.TrimSpace(v), ":")
		cfg.Theme.Name = name
		cfg.Theme.Variant = variant
	}
}

func (c *Config) fill() {
	def := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = def.Server.ReadHeaderTimeout
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	if c.Theme.Name == "" {
		c.Theme.Name = def.Theme.Name
	}
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("config: log level: %w", err))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("config: server addr is empty"))
	}
	return errors.Join(errs...)
}

// Logger builds the zap logger described by the log settings.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if c.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger, nil
}
