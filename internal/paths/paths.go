// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package paths resolves the tool's standard directories.
package paths

import (
	"os"
	"path/filepath"
)

// appDirName is the directory name used under XDG_CONFIG_HOME.
const appDirName = "ld-anonymize"

// GetConfigDir returns the configuration directory. An explicit
// LD_ANONYMIZE_CONFIG_DIR wins; otherwise the XDG config directory is used.
func GetConfigDir() string {
	if dir := os.Getenv("LD_ANONYMIZE_CONFIG_DIR"); dir != "" {
		return dir
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, appDirName)
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	dir := GetConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}
