// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// writeBundle packs the masked document and its vault into a single zip so
// the pair travels together.
func writeBundle(path, maskedName string, maskedData []byte, vaultName string, vaultData []byte) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name string
		data []byte
	}{
		{maskedName, maskedData},
		{vaultName, vaultData},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("creating bundle entry %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return fmt.Errorf("writing bundle entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing bundle: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// ExtractBundle unpacks a bundle into destDir and returns the masked
// document and vault paths. The bundle must contain exactly one vault JSON
// and one masked document.
func ExtractBundle(path, destDir string) (maskedPath, vaultPath string, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", "", fmt.Errorf("opening bundle: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		name := filepath.Base(zf.Name)
		out := filepath.Join(destDir, name)

		rc, err := zf.Open()
		if err != nil {
			return "", "", fmt.Errorf("opening bundle entry %s: %w", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", "", fmt.Errorf("reading bundle entry %s: %w", zf.Name, err)
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return "", "", fmt.Errorf("extracting bundle entry %s: %w", zf.Name, err)
		}

		switch {
		case strings.Contains(name, "_restore_") && strings.HasSuffix(name, ".json"):
			vaultPath = out
		default:
			maskedPath = out
		}
	}

	if maskedPath == "" || vaultPath == "" {
		return "", "", fmt.Errorf("bundle %s does not contain a masked document and a vault", filepath.Base(path))
	}
	return maskedPath, vaultPath, nil
}
