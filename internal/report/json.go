// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter renders a machine-readable summary.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) Description() string {
	return "Machine-readable JSON output"
}

func (f *JSONFormatter) FileExtension() string {
	return ".json"
}

type jsonSummary struct {
	InputPath     string         `json:"input_path"`
	InputFormat   string         `json:"input_format"`
	Mode          string         `json:"mode"`
	MaskedPath    string         `json:"masked_path,omitempty"`
	VaultPath     string         `json:"vault_path,omitempty"`
	BundlePath    string         `json:"bundle_path,omitempty"`
	RestoredPath  string         `json:"restored_path,omitempty"`
	CharCount     int            `json:"char_count"`
	SpanCount     int            `json:"span_count"`
	PatternCounts map[string]int `json:"pattern_counts,omitempty"`
	DurationMS    int64          `json:"duration_ms"`
}

func (f *JSONFormatter) Format(summary Summary, options Options) (string, error) {
	out, err := json.MarshalIndent(jsonSummary{
		InputPath:     summary.InputPath,
		InputFormat:   summary.InputFormat,
		Mode:          summary.Mode,
		MaskedPath:    summary.MaskedPath,
		VaultPath:     summary.VaultPath,
		BundlePath:    summary.BundlePath,
		RestoredPath:  summary.RestoredPath,
		CharCount:     summary.CharCount,
		SpanCount:     summary.SpanCount,
		PatternCounts: summary.PatternCounts,
		DurationMS:    summary.Duration.Milliseconds(),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting JSON output: %w", err)
	}
	return string(out), nil
}
