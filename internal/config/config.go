// Package config provides configuration management for weld using Viper
// for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration comes from .weld.yml, WELD_-prefixed environment
// variables, and bound flags, in ascending precedence. It covers
// component scan paths, resolver behavior, and the dev server.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Components  ComponentsConfig  `yaml:"components"`
	Resolver    ResolverConfig    `yaml:"resolver"`
	Server      ServerConfig      `yaml:"server"`
	Development DevelopmentConfig `yaml:"development"`
	// TargetFiles are CLI arguments, not read from the config file
	TargetFiles []string `yaml:"-"`
}

type ComponentsConfig struct {
	ScanPaths       []string `yaml:"scan_paths"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

type ResolverConfig struct {
	// Compat keeps the legacy containment-based dedup and disables cycle
	// detection
	Compat bool `yaml:"compat"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DevelopmentConfig struct {
	HotReload bool `yaml:"hot_reload"`
	// DebounceMs groups rapid file changes before a rebuild
	DebounceMs int `yaml:"debounce_ms"`
}

// Load builds the configuration from viper's merged sources and applies
// defaults.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Apply scan path defaults only if not explicitly set
	if !viper.IsSet("components.scan_paths") && len(config.Components.ScanPaths) == 0 {
		config.Components.ScanPaths = []string{"./components"}
	}

	// Handle slice values set via viper (workaround for viper slice handling)
	if viper.IsSet("components.scan_paths") && len(config.Components.ScanPaths) == 0 {
		if scanPaths := viper.GetStringSlice("components.scan_paths"); len(scanPaths) > 0 {
			config.Components.ScanPaths = scanPaths
		}
	}
	if viper.IsSet("components.exclude_patterns") && len(config.Components.ExcludePatterns) == 0 {
		if patterns := viper.GetStringSlice("components.exclude_patterns"); len(patterns) > 0 {
			config.Components.ExcludePatterns = patterns
		}
	}

	// Handle bool values set via viper (workaround for viper bool handling)
	if viper.IsSet("resolver.compat") {
		config.Resolver.Compat = viper.GetBool("resolver.compat")
	}
	if viper.IsSet("development.hot_reload") {
		config.Development.HotReload = viper.GetBool("development.hot_reload")
	}
	if viper.IsSet("development.debounce_ms") {
		config.Development.DebounceMs = viper.GetInt("development.debounce_ms")
	}

	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Development.DebounceMs == 0 {
		config.Development.DebounceMs = 300
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d: must be between 1 and 65535", c.Server.Port)
	}
	if len(c.Components.ScanPaths) == 0 {
		return fmt.Errorf("no component scan paths configured")
	}
	for _, path := range c.Components.ScanPaths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("component scan paths must not be empty")
		}
	}
	if c.Development.DebounceMs < 0 {
		return fmt.Errorf("invalid debounce %dms: must not be negative", c.Development.DebounceMs)
	}
	return nil
}

// Address returns the host:port the dev server binds to
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Default returns the configuration used when no file or environment
// overrides are present, the same values `weld init` writes out.
func Default() *Config {
	return &Config{
		Components: ComponentsConfig{
			ScanPaths:       []string{"./components"},
			ExcludePatterns: []string{"*_draft.mithril"},
		},
		Resolver: ResolverConfig{Compat: false},
		Server:   ServerConfig{Host: "localhost", Port: 8080},
		Development: DevelopmentConfig{
			HotReload:  true,
			DebounceMs: 300,
		},
	}
}
