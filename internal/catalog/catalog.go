// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the declarative table of sensitive-data patterns.
// The builtin catalog is initialized once at startup and is read-only
// afterwards, so it is safe to share across concurrent masking pipelines.
package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Span is a half-open rune-offset range into a logical text buffer.
type Span struct {
	Start int
	End   int
	Text  string
}

// Len returns the span length in runes.
func (s Span) Len() int {
	return s.End - s.Start
}

// RevealPolicy controls which part of a matched span stays visible
// under partial masking.
type RevealPolicy int

const (
	// RevealPrefix keeps a fixed number of leading characters visible.
	RevealPrefix RevealPolicy = iota
	// RevealSuffix keeps a trailing, legally meaningful suffix visible
	// (company names, addresses). The masked part is everything before it.
	RevealSuffix
)

// Pattern is one sensitive-data pattern: a matcher plus a reveal policy.
// Patterns are immutable once built.
type Pattern struct {
	// ID is the stable identifier stored in restoration records.
	ID string

	// Name is the human-readable pattern name used in reports.
	Name string

	// Expr is the regular expression source.
	Expr string

	// Policy selects prefix- or suffix-based reveal.
	Policy RevealPolicy

	// PrefixLen is the number of leading runes kept visible under
	// RevealPrefix. Zero means the whole match is masked.
	PrefixLen int

	// Suffixes lists the trailing suffixes kept visible under
	// RevealSuffix, longest first.
	Suffixes []string

	// Check structurally validates a candidate match beyond its shape
	// (e.g. Luhn for bank cards). Candidates failing the check are
	// silently dropped. Nil means no extra validation.
	Check func(match string) bool

	// Description documents what the pattern detects.
	Description string

	regex *regexp.Regexp
}

// compile compiles the pattern expression. Called once during catalog
// construction; the builtin expressions are compile-time constants, so a
// failure here is a programming error.
func (p *Pattern) compile() {
	p.regex = regexp.MustCompile(p.Expr)
}

// FindAll returns all structurally valid matches of the pattern in text,
// as rune-offset spans in ascending order. Zero-length matches and
// matches consisting solely of a visible suffix are dropped.
func (p *Pattern) FindAll(text string) []Span {
	pairs := p.regex.FindAllStringIndex(text, -1)
	if len(pairs) == 0 {
		return nil
	}

	spans := make([]Span, 0, len(pairs))
	// Convert byte offsets to rune offsets in a single pass: FindAllStringIndex
	// returns non-overlapping pairs in ascending byte order.
	byteIdx, runeIdx := 0, 0
	advance := func(to int) int {
		for byteIdx < to {
			_, size := utf8.DecodeRuneInString(text[byteIdx:])
			byteIdx += size
			runeIdx++
		}
		return runeIdx
	}

	for _, pair := range pairs {
		if pair[0] == pair[1] {
			continue
		}
		match := text[pair[0]:pair[1]]
		if p.Check != nil && !p.Check(match) {
			continue
		}
		if p.Policy == RevealSuffix && p.VisibleSuffixLen(match) == utf8.RuneCountInString(match) {
			// The match is nothing but its own suffix; there is no name
			// part to mask, and masking it would break idempotence.
			continue
		}
		start := advance(pair[0])
		end := advance(pair[1])
		spans = append(spans, Span{Start: start, End: end, Text: match})
	}

	return spans
}

// VisiblePrefixLen returns how many leading runes of match stay visible.
func (p *Pattern) VisiblePrefixLen(match string) int {
	if p.Policy != RevealPrefix {
		return 0
	}
	if n := utf8.RuneCountInString(match); p.PrefixLen > n {
		return n
	}
	return p.PrefixLen
}

// VisibleSuffixLen returns how many trailing runes of match stay visible:
// the longest configured suffix the match ends with, or zero.
func (p *Pattern) VisibleSuffixLen(match string) int {
	if p.Policy != RevealSuffix {
		return 0
	}
	for _, suffix := range p.Suffixes {
		if strings.HasSuffix(match, suffix) {
			return utf8.RuneCountInString(suffix)
		}
	}
	return 0
}

// Catalog is an ordered, read-only collection of patterns. Declaration
// order is the tie-break priority for overlapping matches.
type Catalog struct {
	patterns []*Pattern
	byID     map[string]*Pattern
}

// New builds a catalog from the given patterns, compiling each expression.
// Order is preserved.
func New(patterns []*Pattern) *Catalog {
	c := &Catalog{
		patterns: make([]*Pattern, 0, len(patterns)),
		byID:     make(map[string]*Pattern, len(patterns)),
	}
	for _, p := range patterns {
		p.compile()
		c.patterns = append(c.patterns, p)
		c.byID[p.ID] = p
	}
	return c
}

// Patterns returns the catalog's patterns in declaration order.
func (c *Catalog) Patterns() []*Pattern {
	return c.patterns
}

// Get returns the pattern with the given ID, or nil.
func (c *Catalog) Get(id string) *Pattern {
	return c.byID[id]
}

// IDs returns all pattern IDs in declaration order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.patterns))
	for i, p := range c.patterns {
		ids[i] = p.ID
	}
	return ids
}

// Filter returns a catalog containing only the patterns enabled in checks,
// preserving declaration order. An empty map enables everything.
func (c *Catalog) Filter(checks map[string]bool) *Catalog {
	if len(checks) == 0 {
		return c
	}
	filtered := &Catalog{byID: make(map[string]*Pattern)}
	for _, p := range c.patterns {
		if checks[p.ID] {
			filtered.patterns = append(filtered.patterns, p)
			filtered.byID[p.ID] = p
		}
	}
	return filtered
}

// ParseChecks converts a slice of pattern IDs into an enabled-checks map
// over the catalog's patterns. An empty slice or ["all"] enables every
// pattern. Unknown IDs are ignored.
func (c *Catalog) ParseChecks(checks []string) map[string]bool {
	result := make(map[string]bool, len(c.patterns))
	for _, p := range c.patterns {
		result[p.ID] = false
	}

	if len(checks) == 0 || (len(checks) == 1 && strings.TrimSpace(checks[0]) == "all") {
		for id := range result {
			result[id] = true
		}
		return result
	}

	for _, check := range checks {
		if id := strings.TrimSpace(check); id != "" {
			if _, exists := result[id]; exists {
				result[id] = true
			}
		}
	}

	return result
}
