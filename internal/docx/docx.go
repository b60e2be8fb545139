// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package docx reads DOCX (OOXML) packages, builds a run-accurate model of
// their visible text and splices equal-length replacements back into the
// original XML. Everything outside changed text nodes stays byte for byte
// identical, so styles, numbering, images and layout survive the rewrite.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var (
	// ErrMissingDocumentPart reports an archive without word/document.xml.
	ErrMissingDocumentPart = errors.New("docx: missing word/document.xml part")

	// ErrRewriteConflict reports a replacement that cannot be applied
	// without changing the document structure: offsets out of range,
	// spans crossing a paragraph boundary, unequal lengths, or text that
	// no longer matches.
	ErrRewriteConflict = errors.New("docx: replacement conflicts with document text")
)

// documentPart is the main body part of every DOCX package.
const documentPart = "word/document.xml"

// entry is one file of the original archive, kept in order so the
// repackaged zip mirrors the source.
type entry struct {
	name string
	data []byte
}

// Document is a parsed DOCX package. Text parts (body, headers, footers)
// carry a paragraph model; all other entries pass through untouched.
type Document struct {
	entries []entry
	index   map[string]int // entry position by name
	parts   []*part        // document.xml, then headers, then footers
}

// Parse reads a DOCX package from data. The archive must contain
// word/document.xml; headers and footers are modeled too when present.
func Parse(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: opening archive: %w", err)
	}

	doc := &Document{index: make(map[string]int)}
	byName := doc.index
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("docx: opening %s: %w", zf.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("docx: reading %s: %w", zf.Name, err)
		}
		byName[zf.Name] = len(doc.entries)
		doc.entries = append(doc.entries, entry{name: zf.Name, data: content})
	}

	if _, ok := byName[documentPart]; !ok {
		return nil, ErrMissingDocumentPart
	}

	for _, name := range textPartNames(byName) {
		p, err := scanPart(name, doc.entries[byName[name]].data)
		if err != nil {
			return nil, err
		}
		// Elements are matched by their written prefix. A body part with
		// no w-prefixed elements would slip through every rewrite
		// unmasked, so reject it rather than pass it along silently.
		if name == documentPart && !p.sawWordML {
			return nil, fmt.Errorf("docx: %s contains no WordprocessingML elements", name)
		}
		doc.parts = append(doc.parts, p)
	}

	return doc, nil
}

// textPartNames returns the parts carrying visible text in a stable order:
// the body first, then headers and footers each sorted by name.
func textPartNames(byName map[string]int) []string {
	var headers, footers []string
	for name := range byName {
		switch {
		case strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml"):
			headers = append(headers, name)
		case strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml"):
			footers = append(footers, name)
		}
	}
	sort.Strings(headers)
	sort.Strings(footers)

	names := make([]string, 0, 1+len(headers)+len(footers))
	names = append(names, documentPart)
	names = append(names, headers...)
	names = append(names, footers...)
	return names
}

// LogicalText returns the document's visible text: every paragraph in
// document order (body, then headers, then footers), joined by newlines.
// Masking and restoration offsets refer to this string.
func (d *Document) LogicalText() string {
	var sb strings.Builder
	first := true
	for _, p := range d.parts {
		for _, para := range p.paragraphs {
			if !first {
				sb.WriteByte('\n')
			}
			first = false
			for _, r := range para.runs {
				sb.WriteString(string(r.text))
			}
		}
	}
	return sb.String()
}

// CharCount returns the rune length of the logical text.
func (d *Document) CharCount() int {
	n, paragraphs := 0, 0
	for _, p := range d.parts {
		for _, para := range p.paragraphs {
			paragraphs++
			for _, r := range para.runs {
				n += len(r.text)
			}
		}
	}
	if paragraphs > 1 {
		n += paragraphs - 1 // newline separators
	}
	return n
}

// Bytes repackages the document as a DOCX archive, preserving the original
// entry order.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range d.entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("docx: writing %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("docx: writing %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
