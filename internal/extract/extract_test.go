// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"report.txt", FormatText, false},
		{"契约.DOCX", FormatDOCX, false},
		{"scan.pdf", FormatPDF, false},
		{"notes.md", "", true},
		{"archive", "", true},
	}

	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, "path %q", tt.path)
			continue
		}
		require.NoError(t, err, "path %q", tt.path)
		assert.Equal(t, tt.want, got, "path %q", tt.path)
	}
}

func TestFromTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("\uFEFF电话13812345678\r\n第二行"), 0o644))

	content, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatText, content.Format)
	assert.Equal(t, "电话13812345678\n第二行", content.Text, "BOM stripped and CRLF normalized")
	assert.Nil(t, content.Doc)
}

func TestFromTextFileRejectsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x41}, 0o644))

	_, err := FromFile(path)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestFromDocxFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	_, err := FromFile(path)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestFromFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b"), 0o644))

	_, err := FromFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFromFileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxInputSize+1)) // sparse, no real content
	require.NoError(t, f.Close())

	_, err = FromFile(path)
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a\nb\nc", NormalizeText("\uFEFFa\r\nb\nc"))
	assert.Equal(t, "", NormalizeText(""))
}
