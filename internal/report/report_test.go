// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() Summary {
	return Summary{
		InputPath:   "contract.docx",
		InputFormat: "docx",
		Mode:        "smart",
		MaskedPath:  "contract_masked_20260826.docx",
		VaultPath:   "restore_20260826.json",
		CharCount:   1024,
		SpanCount:   3,
		PatternCounts: map[string]int{
			"PHONE":   2,
			"COMPANY": 1,
		},
		Duration: 153 * time.Millisecond,
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "text"}, List())

	formatter, ok := Get("text")
	require.True(t, ok)
	assert.Equal(t, ".txt", formatter.FileExtension())

	_, ok = Get("xml")
	assert.False(t, ok)
}

func TestTextFormatter(t *testing.T) {
	out, err := NewTextFormatter().Format(sampleSummary(), Options{NoColor: true})
	require.NoError(t, err)

	assert.Contains(t, out, "contract.docx")
	assert.Contains(t, out, "Masked spans: 3")
	assert.Contains(t, out, "PHONE")
	assert.Contains(t, out, "COMPANY")
	assert.NotContains(t, out, "Duration", "duration is verbose-only")
}

func TestTextFormatterVerbose(t *testing.T) {
	out, err := NewTextFormatter().Format(sampleSummary(), Options{NoColor: true, Verbose: true})
	require.NoError(t, err)

	assert.Contains(t, out, "Characters: 1024")
	assert.Contains(t, out, "Duration: 153ms")
}

func TestTextFormatterNoSpans(t *testing.T) {
	summary := sampleSummary()
	summary.SpanCount = 0
	summary.PatternCounts = nil

	out, err := NewTextFormatter().Format(summary, Options{NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, out, "No sensitive spans found.")
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSONFormatter().Format(sampleSummary(), Options{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "smart", decoded["mode"])
	assert.Equal(t, float64(3), decoded["span_count"])
	assert.Equal(t, float64(153), decoded["duration_ms"])

	counts, ok := decoded["pattern_counts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), counts["PHONE"])
}
