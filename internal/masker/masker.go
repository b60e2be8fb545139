// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package masker turns sensitive spans into placeholders and produces the
// ordered restoration records that make the operation reversible.
package masker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/SenryLee/LD-anonymization-tool/internal/catalog"
)

// Mode selects the masking strategy.
type Mode int

const (
	// ModeFull replaces every keyword occurrence with a fixed placeholder.
	ModeFull Mode = iota
	// ModePartial keeps a visible prefix and masks the remainder,
	// character count preserved.
	ModePartial
	// ModeRegex masks matches of a user-supplied pattern with an explicit
	// reveal count, character count preserved.
	ModeRegex
	// ModeSmart runs every enabled catalog pattern plus user keywords in a
	// single pass, each masked under its own reveal policy.
	ModeSmart
)

// String returns the mode name as used on the command line.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModePartial:
		return "partial"
	case ModeRegex:
		return "regex"
	case ModeSmart:
		return "smart"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return ModeFull, nil
	case "partial":
		return ModePartial, nil
	case "regex":
		return ModeRegex, nil
	case "smart", "":
		return ModeSmart, nil
	default:
		return ModeSmart, fmt.Errorf("unknown masking mode %q", s)
	}
}

// Priority selects how overlapping candidate spans are resolved.
type Priority int

const (
	// PriorityLongestMatch accepts the longest overlapping candidate,
	// breaking ties by catalog declaration order.
	PriorityLongestMatch Priority = iota
	// PriorityCatalogOrder accepts candidates strictly in declaration
	// order, breaking ties by length.
	PriorityCatalogOrder
)

// FullPlaceholder is the fixed placeholder used by ModeFull in plain text.
// Document rewriting never uses it; layout stability requires equal-length
// placeholders there.
const FullPlaceholder = "***"

// Options configures one masking pass.
type Options struct {
	// Keywords are literal strings to mask in addition to catalog patterns.
	Keywords []string

	// KeywordReveal is the visible prefix length for keyword spans.
	// Negative means keywords are fully masked (the default).
	KeywordReveal int

	// Pattern is the user-supplied expression for ModeRegex.
	Pattern string

	// Reveal is the visible prefix length for ModePartial keywords and
	// ModeRegex matches.
	Reveal int

	// MaskRune is the character used for masked narrow runes. Zero value
	// means '*'. Wide (East Asian full-width) runes always mask to '█' so
	// the placeholder keeps the original visual width.
	MaskRune rune

	// LengthPreserving forces equal-length placeholders even under
	// ModeFull. Document rewriting sets this unconditionally.
	LengthPreserving bool

	// Priority resolves overlapping candidate spans.
	Priority Priority

	// Catalog supplies the patterns for ModeSmart. Nil means the builtin
	// catalog.
	Catalog *catalog.Catalog
}

// Mask applies the selected masking mode to text and returns the masked
// text together with restoration records ordered by ascending offset.
func Mask(text string, mode Mode, opts Options) (string, []Record, error) {
	if opts.MaskRune == 0 {
		opts.MaskRune = '*'
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Builtin()
	}
	if mode == ModeSmart {
		// Smart placeholders always preserve character count so that
		// document rewriting keeps runs and layout stable.
		opts.LengthPreserving = true
	}

	cands, err := collect(text, mode, opts)
	if err != nil {
		return "", nil, err
	}

	accepted := resolve(cands, len([]rune(text)), opts.Priority)
	return apply(text, accepted, opts)
}

// collect gathers candidate spans for the given mode.
func collect(text string, mode Mode, opts Options) ([]candidate, error) {
	var cands []candidate

	keywordReveal := func() int {
		switch mode {
		case ModePartial:
			if opts.Reveal > 0 {
				return opts.Reveal
			}
			return 1
		case ModeSmart:
			return opts.KeywordReveal
		default:
			return -1
		}
	}()

	switch mode {
	case ModeFull, ModePartial:
		cands = keywordCandidates(text, opts.Keywords, keywordReveal)

	case ModeRegex:
		if strings.TrimSpace(opts.Pattern) == "" {
			return nil, fmt.Errorf("regex mode requires a pattern")
		}
		if _, err := regexp.Compile(opts.Pattern); err != nil {
			return nil, fmt.Errorf("invalid user pattern: %w", err)
		}
		reveal := opts.Reveal
		if reveal < 0 {
			reveal = 0
		}
		user := catalog.New([]*catalog.Pattern{{
			ID:        UserPatternID,
			Name:      "user regex",
			Expr:      opts.Pattern,
			Policy:    catalog.RevealPrefix,
			PrefixLen: reveal,
		}})
		for _, span := range user.Patterns()[0].FindAll(text) {
			cands = append(cands, candidate{
				span:      span,
				patternID: UserPatternID,
				order:     0,
				prefixLen: reveal,
			})
		}

	case ModeSmart:
		// User keywords take priority over catalog patterns on ties.
		cands = keywordCandidates(text, opts.Keywords, keywordReveal)
		for order, p := range opts.Catalog.Patterns() {
			for _, span := range p.FindAll(text) {
				cands = append(cands, candidate{
					span:      span,
					patternID: p.ID,
					order:     order + 1,
					prefixLen: p.VisiblePrefixLen(span.Text),
					suffixLen: p.VisibleSuffixLen(span.Text),
				})
			}
		}

	default:
		return nil, fmt.Errorf("unsupported masking mode %d", mode)
	}

	return cands, nil
}

// keywordCandidates finds every literal occurrence of each keyword.
// reveal < 0 marks the candidate for full masking.
func keywordCandidates(text string, keywords []string, reveal int) []candidate {
	var cands []candidate
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		for _, span := range findLiteral(text, kw) {
			c := candidate{
				span:      span,
				patternID: KeywordPatternID,
				order:     0,
			}
			if reveal < 0 {
				c.full = true
			} else {
				c.prefixLen = reveal
			}
			cands = append(cands, c)
		}
	}
	return cands
}

// findLiteral returns rune-offset spans of all non-overlapping occurrences
// of kw in text, ascending.
func findLiteral(text, kw string) []catalog.Span {
	var spans []catalog.Span
	byteIdx, runeIdx := 0, 0
	for {
		rel := strings.Index(text[byteIdx:], kw)
		if rel < 0 {
			break
		}
		// Advance rune counter to the match start.
		for i := 0; i < rel; {
			_, size := utf8.DecodeRuneInString(text[byteIdx+i:])
			i += size
			runeIdx++
		}
		byteIdx += rel
		start := runeIdx
		for i := 0; i < len(kw); {
			_, size := utf8.DecodeRuneInString(text[byteIdx+i:])
			i += size
			runeIdx++
		}
		byteIdx += len(kw)
		spans = append(spans, catalog.Span{Start: start, End: runeIdx, Text: kw})
	}
	return spans
}

// NormalizeKeywords parses a raw keyword list, splitting on newlines,
// commas and semicolons (full-width included), trimming whitespace and
// dropping empties.
func NormalizeKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := keywordSeparator.Split(raw, -1)
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

var keywordSeparator = regexp.MustCompile(`[\n,;，；]`)
