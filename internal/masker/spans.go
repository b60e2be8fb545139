// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package masker

import (
	"sort"
	"strings"

	"golang.org/x/text/width"

	"github.com/SenryLee/LD-anonymization-tool/internal/catalog"
)

// Synthetic pattern identifiers for spans that do not come from the
// builtin catalog.
const (
	// KeywordPatternID tags spans matched from user keywords.
	KeywordPatternID = "KEYWORD"
	// UserPatternID tags spans matched by a user-supplied expression.
	UserPatternID = "USER_REGEX"
)

// wideMaskRune replaces East Asian full-width runes so the placeholder
// keeps the original visual width.
const wideMaskRune = '█'

// candidate is one potential masking target before overlap resolution.
type candidate struct {
	span      catalog.Span
	patternID string

	// order is the priority rank for tie-breaking: keywords and user
	// patterns are 0, catalog patterns follow declaration order from 1.
	order int

	prefixLen int
	suffixLen int

	// full marks candidates that take the fixed FullPlaceholder when the
	// pass is not length preserving.
	full bool
}

// resolve clamps candidates to [0, textLen), drops degenerates, and picks a
// non-overlapping subset under the given priority. The result is ordered by
// ascending start.
func resolve(cands []candidate, textLen int, pri Priority) []candidate {
	valid := cands[:0]
	for _, c := range cands {
		if c.span.Start < 0 {
			c.span.Start = 0
		}
		if c.span.End > textLen {
			c.span.End = textLen
		}
		if c.span.End <= c.span.Start {
			continue
		}
		valid = append(valid, c)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i], valid[j]
		switch pri {
		case PriorityCatalogOrder:
			if a.order != b.order {
				return a.order < b.order
			}
			if la, lb := a.span.End-a.span.Start, b.span.End-b.span.Start; la != lb {
				return la > lb
			}
		default: // PriorityLongestMatch
			if la, lb := a.span.End-a.span.Start, b.span.End-b.span.Start; la != lb {
				return la > lb
			}
			if a.order != b.order {
				return a.order < b.order
			}
		}
		return a.span.Start < b.span.Start
	})

	var accepted []candidate
	for _, c := range valid {
		overlaps := false
		for _, a := range accepted {
			if c.span.Start < a.span.End && a.span.Start < c.span.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].span.Start < accepted[j].span.Start
	})
	return accepted
}

// apply replaces each accepted span with its placeholder and emits one
// restoration record per changed span. Record offsets are rune offsets into
// the returned masked text.
func apply(text string, accepted []candidate, opts Options) (string, []Record, error) {
	if len(accepted) == 0 {
		return text, nil, nil
	}

	runes := []rune(text)
	var out strings.Builder
	out.Grow(len(text))
	records := make([]Record, 0, len(accepted))

	cursor := 0  // rune index into the source text
	written := 0 // rune count already written to out
	for _, c := range accepted {
		for ; cursor < c.span.Start; cursor++ {
			out.WriteRune(runes[cursor])
			written++
		}

		original := string(runes[c.span.Start:c.span.End])
		ph := placeholder(runes[c.span.Start:c.span.End], c, opts)
		cursor = c.span.End

		if ph == original {
			// Reveal covers the whole span; nothing changes and no
			// record is needed.
			out.WriteString(original)
			written += c.span.End - c.span.Start
			continue
		}

		phLen := len([]rune(ph))
		records = append(records, Record{
			PatternID:   c.patternID,
			Original:    original,
			Placeholder: ph,
			Offset:      written,
			Length:      phLen,
		})
		out.WriteString(ph)
		written += phLen
	}
	for ; cursor < len(runes); cursor++ {
		out.WriteRune(runes[cursor])
	}

	return out.String(), records, nil
}

// placeholder builds the replacement for one span.
func placeholder(span []rune, c candidate, opts Options) string {
	if c.full && !opts.LengthPreserving {
		return FullPlaceholder
	}

	prefix, suffix := c.prefixLen, c.suffixLen
	if c.full {
		prefix, suffix = 0, 0
	}
	if prefix > len(span) {
		prefix = len(span)
	}
	if suffix > len(span)-prefix {
		suffix = len(span) - prefix
	}

	masked := make([]rune, len(span))
	for i, r := range span {
		if i < prefix || i >= len(span)-suffix {
			masked[i] = r
		} else {
			masked[i] = maskRuneFor(r, opts.MaskRune)
		}
	}
	return string(masked)
}

// maskRuneFor picks the mask character for a single rune, preserving the
// visual width of full-width characters.
func maskRuneFor(r, narrow rune) rune {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return wideMaskRune
	default:
		return narrow
	}
}
