// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report renders run summaries. Formatters only ever see counts
// and file paths; original span text stays out of every output format.
package report

import (
	"sort"
	"time"
)

// summaryDurationUnit is the rounding granularity for displayed durations.
const summaryDurationUnit = time.Millisecond

// Summary describes one completed anonymization or restoration run.
type Summary struct {
	InputPath     string
	InputFormat   string
	Mode          string
	MaskedPath    string
	VaultPath     string
	BundlePath    string
	RestoredPath  string
	CharCount     int
	SpanCount     int
	PatternCounts map[string]int
	Duration      time.Duration
}

// Options defines configuration options for formatters.
type Options struct {
	NoColor bool
	Verbose bool
}

// Formatter renders a summary in one output format.
type Formatter interface {
	Format(summary Summary, options Options) (string, error)

	// Name returns the formatter name as used with the -format flag.
	Name() string

	// Description returns a brief description of the output format.
	Description() string

	// FileExtension returns the recommended file extension for this format.
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[string]Formatter)}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(NewTextFormatter())
	DefaultRegistry.Register(NewJSONFormatter())
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// sortedPatternIDs returns the pattern identifiers of a count map ordered
// by descending count, then name.
func sortedPatternIDs(counts map[string]int) []string {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}
