package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File represents the structure of the .texbuddy configuration file.
//
// Example:
//
//	texbuddy:
//	  language: en
//	  format: markdown
//	  enable-modules-by-default: true
//	modules:
//	  aspell:
//	    enabled: true
//	    language: en-US
//	  chktex:
//	    enabled: false
type File struct {
	// Global holds the orchestrator-level options (language, output,
	// format, enable-modules-by-default, whitelist).
	Global map[string]any `yaml:"texbuddy,omitempty"`

	// Modules maps checker names to their option maps. The "enabled"
	// key is recognized for every module; everything else is owned by
	// the checker itself.
	Modules map[string]map[string]any `yaml:"modules,omitempty"`
}

// LoadConfigFile loads configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound so callers
// can decide whether a missing file is fatal (explicit path) or not
// (default search).
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Global == nil {
		cf.Global = make(map[string]any)
	}
	if cf.Modules == nil {
		cf.Modules = make(map[string]map[string]any)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .texbuddy in the current directory
// 3. Look for .texbuddy in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
