package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProfileDirEnv overrides the isolated browser profile directory.
const ProfileDirEnv = "WINDLASS_PROFILE_DIR"

// Config holds all windlass settings. Every field is optional in the
// YAML file; zero values are replaced with defaults on load.
type Config struct {
	Browser    BrowserConfig    `yaml:"browser"`
	Extensions ExtensionsConfig `yaml:"extensions"`
}

// BrowserConfig configures browser acquisition.
type BrowserConfig struct {
	// DebugPort is the remote debugging port used both to attach to an
	// externally running browser and to expose one on launched browsers.
	DebugPort int `yaml:"debug_port"`

	// ProfileDir is the isolated profile directory for launched browsers.
	// The WINDLASS_PROFILE_DIR environment variable takes precedence.
	ProfileDir string `yaml:"profile_dir"`

	// Headless launches the browser without a visible window.
	Headless bool `yaml:"headless"`

	// MaxPages caps the number of simultaneously open tabs.
	MaxPages int `yaml:"max_pages"`
}

// ExtensionsConfig configures the external tool extension scan.
type ExtensionsConfig struct {
	// Dir is the directory scanned for extension artifacts on every
	// catalog rebuild. Defaults to ~/.windlass/extensions.
	Dir string `yaml:"dir"`

	// Pattern is the glob filenames must match to be loaded.
	Pattern string `yaml:"pattern"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Browser: BrowserConfig{
			DebugPort: 9222,
			Headless:  false,
			MaxPages:  16,
		},
		Extensions: ExtensionsConfig{
			Pattern: "*.so",
		},
	}
}

// Load reads the configuration file at path, falling back to
// ~/.windlass/config.yaml when path is empty. A missing file is not an
// error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".windlass", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Browser.DebugPort == 0 {
		c.Browser.DebugPort = d.Browser.DebugPort
	}
	if c.Browser.MaxPages == 0 {
		c.Browser.MaxPages = d.Browser.MaxPages
	}
	if c.Extensions.Pattern == "" {
		c.Extensions.Pattern = d.Extensions.Pattern
	}
	if c.Extensions.Dir == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			c.Extensions.Dir = filepath.Join(homeDir, ".windlass", "extensions")
		}
	}
}

// ResolveProfileDir returns the browser profile directory, honoring the
// environment override, then the config file, then a temp-dir default.
func (c *Config) ResolveProfileDir() string {
	if dir := os.Getenv(ProfileDirEnv); dir != "" {
		return dir
	}
	if c.Browser.ProfileDir != "" {
		return c.Browser.ProfileDir
	}
	return filepath.Join(os.TempDir(), "windlass-profile")
}
