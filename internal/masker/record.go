// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package masker

import (
	"fmt"
	"strings"
)

// Record captures one masked span with everything needed to reverse it.
// Offset and Length are rune based and refer to the masked text, not the
// original, so restoration is a pure splice.
type Record struct {
	PatternID   string `json:"pattern_id"`
	Original    string `json:"original"`
	Placeholder string `json:"placeholder"`
	Offset      int    `json:"offset"`
	Length      int    `json:"length"`
}

// Restore replays records against masked text and returns the original.
// Records must be ordered by ascending offset and non-overlapping; each
// placeholder is verified in place before it is spliced out, so stale or
// misaligned records fail instead of corrupting the document. Error
// messages carry offsets only, never span content.
func Restore(masked string, records []Record) (string, error) {
	if len(records) == 0 {
		return masked, nil
	}

	runes := []rune(masked)
	var out strings.Builder
	out.Grow(len(masked))

	cursor := 0
	for i, rec := range records {
		if rec.Offset < cursor {
			return "", fmt.Errorf("record %d at offset %d overlaps the previous record", i, rec.Offset)
		}
		if rec.Length != len([]rune(rec.Placeholder)) {
			return "", fmt.Errorf("record %d at offset %d has inconsistent length", i, rec.Offset)
		}
		if rec.Offset+rec.Length > len(runes) {
			return "", fmt.Errorf("record %d at offset %d extends past end of text", i, rec.Offset)
		}
		if string(runes[rec.Offset:rec.Offset+rec.Length]) != rec.Placeholder {
			return "", fmt.Errorf("record %d at offset %d does not match the masked text", i, rec.Offset)
		}
		out.WriteString(string(runes[cursor:rec.Offset]))
		out.WriteString(rec.Original)
		cursor = rec.Offset + rec.Length
	}
	out.WriteString(string(runes[cursor:]))

	return out.String(), nil
}

// PatternCounts tallies records by pattern identifier.
func PatternCounts(records []Record) map[string]int {
	if len(records) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.PatternID]++
	}
	return counts
}
