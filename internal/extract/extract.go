// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract loads input documents, detects their format and produces
// the logical text that masking operates on.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/SenryLee/LD-anonymization-tool/internal/docx"
)

// MaxInputSize caps input files at 50 MiB. Larger documents are rejected
// before any content is read.
const MaxInputSize = 50 << 20

var (
	// ErrInputTooLarge reports a file above MaxInputSize.
	ErrInputTooLarge = fmt.Errorf("input exceeds the %d MiB limit", MaxInputSize>>20)

	// ErrUnsupportedFormat reports a file extension outside txt/docx/pdf.
	ErrUnsupportedFormat = errors.New("unsupported input format (expected .txt, .docx or .pdf)")

	// ErrMalformedDocument reports a file whose content does not match
	// its claimed format.
	ErrMalformedDocument = errors.New("malformed document")
)

// Format identifies a supported input format.
type Format string

const (
	FormatText Format = "txt"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Content is the extraction result. Text carries the logical text; Doc is
// set for DOCX inputs so the caller can rewrite the package in place.
type Content struct {
	Format    Format
	Text      string
	Doc       *docx.Document
	PageCount int // PDF only
}

// DetectFormat maps a file path to its input format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return FormatText, nil
	case ".docx":
		return FormatDOCX, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FromFile extracts the logical text of the document at path. The size cap
// is enforced against file metadata before any content is read.
func FromFile(path string) (*Content, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if info.Size() > MaxInputSize {
		return nil, ErrInputTooLarge
	}

	switch format {
	case FormatText:
		return fromTextFile(path)
	case FormatDOCX:
		return fromDocxFile(path)
	case FormatPDF:
		return fromPDFFile(path)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func fromTextFile(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: text file is not valid UTF-8", ErrMalformedDocument)
	}
	return &Content{Format: FormatText, Text: NormalizeText(string(data))}, nil
}

func fromDocxFile(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	doc, err := docx.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &Content{Format: FormatDOCX, Text: doc.LogicalText(), Doc: doc}, nil
}

// NormalizeText strips a UTF-8 BOM and converts CRLF line endings so
// masking offsets are stable across platforms.
func NormalizeText(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	return strings.ReplaceAll(text, "\r\n", "\n")
}
