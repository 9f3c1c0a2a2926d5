// Package config provides the idshift configuration file: per-OS path
// overrides for the target installation, stored as YAML in the user's
// config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Paths holds user-supplied overrides for one operating system. Empty
// fields mean "use the built-in default".
type Paths struct {
	// Base is the application bundle directory (the one containing
	// package.json and out/main.js).
	Base string `yaml:"base,omitempty"`
	// Storage is the storage.json path.
	Storage string `yaml:"storage,omitempty"`
	// Database is the state.vscdb path.
	Database string `yaml:"database,omitempty"`
	// MachineID is the machineId marker file path.
	MachineID string `yaml:"machine_id,omitempty"`
}

// Config is the full configuration document.
type Config struct {
	Windows Paths `yaml:"windows,omitempty"`
	Darwin  Paths `yaml:"darwin,omitempty"`
	Linux   Paths `yaml:"linux,omitempty"`
}

// ForOS returns the override block for the named GOOS value. Unknown
// names return an empty block, which downstream treats as "no overrides".
func (c *Config) ForOS(name string) Paths {
	switch name {
	case "windows":
		return c.Windows
	case "darwin":
		return c.Darwin
	case "linux":
		return c.Linux
	}
	return Paths{}
}

// SetBase records a base-directory override for the named OS.
func (c *Config) SetBase(name, base string) {
	switch name {
	case "windows":
		c.Windows.Base = base
	case "darwin":
		c.Darwin.Base = base
	case "linux":
		c.Linux.Base = base
	}
}

// Dir returns the idshift config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/idshift if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "idshift"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path. A missing file returns an empty
// config without error so first runs need no setup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to path, creating the parent directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
