// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration file and resolves profiles.
// Flag values always win over profile values, which win over defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/SenryLee/LD-anonymization-tool/internal/paths"
)

// Config represents the application configuration
type Config struct {
	// Default settings applied when neither a flag nor a profile sets a
	// value.
	Defaults struct {
		Mode     string `yaml:"mode"`
		Format   string `yaml:"format"`
		Checks   string `yaml:"checks"`
		MaskChar string `yaml:"mask_char"`
		Reveal   int    `yaml:"reveal"`
		Bundle   bool   `yaml:"bundle"`
		Debug    bool   `yaml:"debug"`
		NoColor  bool   `yaml:"no_color"`
	} `yaml:"defaults"`

	// Keywords are masked in every run in addition to pattern matches.
	Keywords []string `yaml:"keywords"`

	// Vault controls where sealed restoration files are written.
	Vault struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"vault"`

	// Profiles for recurring anonymization scenarios.
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a named anonymization scenario.
type Profile struct {
	Mode        string   `yaml:"mode"`
	Format      string   `yaml:"format"`
	Checks      string   `yaml:"checks"`
	MaskChar    string   `yaml:"mask_char"`
	Reveal      int      `yaml:"reveal"`
	Bundle      bool     `yaml:"bundle"`
	Debug       bool     `yaml:"debug"`
	NoColor     bool     `yaml:"no_color"`
	Keywords    []string `yaml:"keywords"`
	Description string   `yaml:"description"`
}

// LoadConfig loads configuration from the specified file path. An empty
// path returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{Profiles: make(map[string]Profile)}
	config.Defaults.Mode = "smart"
	config.Defaults.Format = "text"
	config.Defaults.Checks = "all"
	config.Defaults.MaskChar = "*"
	config.Vault.OutputDir = "."

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches
// standard locations when configFile is empty). If loading fails, it
// returns a default configuration so callers never crash on a bad file.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg, _ = LoadConfig("")
	}
	return cfg
}

// FindConfigFile looks for a configuration file in standard locations.
func FindConfigFile() string {
	// Project-local names first.
	for _, name := range []string{
		"config.yaml",
		"ld-anonymize.yaml",
		"ld-anonymize.yml",
		".ld-anonymize.yaml",
		".ld-anonymize.yml",
	} {
		if fileExists(name) {
			return name
		}
	}

	if dir := paths.GetConfigDir(); dir != "" {
		for _, name := range []string{"config.yaml", "config.yml"} {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate
			}
		}
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// ListProfiles returns the available profile names, sorted.
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}
