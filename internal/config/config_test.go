// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "smart", cfg.Defaults.Mode)
	assert.Equal(t, "text", cfg.Defaults.Format)
	assert.Equal(t, "all", cfg.Defaults.Checks)
	assert.Equal(t, "*", cfg.Defaults.MaskChar)
	assert.Equal(t, ".", cfg.Vault.OutputDir)
	assert.Empty(t, cfg.Keywords)
}

func TestLoadConfigFromFile(t *testing.T) {
	content := `
defaults:
  mode: partial
  reveal: 2
  no_color: true
keywords:
  - 项目Alpha
  - 内部代号
vault:
  output_dir: /tmp/vaults
profiles:
  contracts:
    mode: smart
    checks: PHONE,NATIONAL_ID,COMPANY
    bundle: true
    keywords: [甲方]
    description: contract anonymization
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "partial", cfg.Defaults.Mode)
	assert.Equal(t, 2, cfg.Defaults.Reveal)
	assert.True(t, cfg.Defaults.NoColor)
	assert.Equal(t, []string{"项目Alpha", "内部代号"}, cfg.Keywords)
	assert.Equal(t, "/tmp/vaults", cfg.Vault.OutputDir)

	profile := cfg.GetProfile("contracts")
	require.NotNil(t, profile)
	assert.Equal(t, "smart", profile.Mode)
	assert.True(t, profile.Bundle)
	assert.Equal(t, []string{"甲方"}, profile.Keywords)

	assert.Nil(t, cfg.GetProfile("absent"))
	assert.Equal(t, []string{"contracts"}, cfg.ListProfiles())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaults: [not a map"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigOrDefaultFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::"), 0o644))

	cfg := LoadConfigOrDefault(path)
	require.NotNil(t, cfg)
	assert.Equal(t, "smart", cfg.Defaults.Mode)
}
