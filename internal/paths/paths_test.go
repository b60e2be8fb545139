// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigDirOverride(t *testing.T) {
	t.Setenv("LD_ANONYMIZE_CONFIG_DIR", "/opt/ld-anonymize")
	assert.Equal(t, "/opt/ld-anonymize", GetConfigDir())
	assert.Equal(t, "/opt/ld-anonymize/config.yaml", GetConfigFile())
}

func TestGetConfigDirXDG(t *testing.T) {
	t.Setenv("LD_ANONYMIZE_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/home/user/.config")
	assert.Equal(t, filepath.Join("/home/user/.config", "ld-anonymize"), GetConfigDir())
}
