// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// TextFormatter renders a human-readable colored summary.
type TextFormatter struct {
	colors map[string]*color.Color
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *TextFormatter) Name() string {
	return "text"
}

func (f *TextFormatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *TextFormatter) FileExtension() string {
	return ".txt"
}

func (f *TextFormatter) Format(summary Summary, options Options) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}

	var sb strings.Builder
	sb.WriteString(f.colors["white"].Sprint("Anonymization Summary"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")

	f.writeField(&sb, "Input", summary.InputPath)
	f.writeField(&sb, "Format", summary.InputFormat)
	f.writeField(&sb, "Mode", summary.Mode)
	if summary.MaskedPath != "" {
		f.writeField(&sb, "Masked output", summary.MaskedPath)
	}
	if summary.VaultPath != "" {
		f.writeField(&sb, "Vault", summary.VaultPath)
	}
	if summary.BundlePath != "" {
		f.writeField(&sb, "Bundle", summary.BundlePath)
	}
	if summary.RestoredPath != "" {
		f.writeField(&sb, "Restored output", summary.RestoredPath)
	}

	if summary.SpanCount == 0 && summary.RestoredPath == "" {
		sb.WriteString(f.colors["green"].Sprint("No sensitive spans found."))
		sb.WriteString("\n")
		return sb.String(), nil
	}

	f.writeField(&sb, "Masked spans", fmt.Sprintf("%d", summary.SpanCount))
	for _, id := range sortedPatternIDs(summary.PatternCounts) {
		line := fmt.Sprintf("  %-15s %d", id, summary.PatternCounts[id])
		sb.WriteString(f.colors["yellow"].Sprint(line))
		sb.WriteString("\n")
	}

	if options.Verbose {
		f.writeField(&sb, "Characters", fmt.Sprintf("%d", summary.CharCount))
		f.writeField(&sb, "Duration", summary.Duration.Round(summaryDurationUnit).String())
	}

	return sb.String(), nil
}

func (f *TextFormatter) writeField(sb *strings.Builder, label, value string) {
	sb.WriteString(f.colors["cyan"].Sprintf("%s: ", label))
	sb.WriteString(value)
	sb.WriteString("\n")
}
