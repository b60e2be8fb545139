// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"encoding/json"
	"fmt"
	"os"
)

// vaultFileMode keeps sealed blobs readable by the owner only.
const vaultFileMode = 0o600

// WriteFile encodes a blob as indented JSON and writes it to path with
// owner-only permissions.
func WriteFile(path string, blob *Blob) error {
	data, err := Encode(blob)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, vaultFileMode); err != nil {
		return fmt.Errorf("writing vault file: %w", err)
	}
	return nil
}

// ReadFile loads a blob from path.
func ReadFile(path string) (*Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vault file: %w", err)
	}
	return Decode(data)
}

// Encode serializes a blob as indented JSON.
func Encode(blob *Blob) ([]byte, error) {
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding vault: %w", err)
	}
	return data, nil
}

// Decode parses a blob from JSON data.
func Decode(data []byte) (*Blob, error) {
	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("parsing vault file: %w", err)
	}
	if blob.Version == "" {
		return nil, fmt.Errorf("parsing vault file: missing version")
	}
	return &blob, nil
}
