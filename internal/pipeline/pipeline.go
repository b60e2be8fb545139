// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline drives a full anonymization run: extract, mask, seal,
// rewrite, write. No output file is written until every stage has
// succeeded, so a failed run never leaves partial artifacts behind.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SenryLee/LD-anonymization-tool/internal/catalog"
	"github.com/SenryLee/LD-anonymization-tool/internal/docx"
	"github.com/SenryLee/LD-anonymization-tool/internal/extract"
	"github.com/SenryLee/LD-anonymization-tool/internal/masker"
	"github.com/SenryLee/LD-anonymization-tool/internal/observability"
	"github.com/SenryLee/LD-anonymization-tool/internal/report"
	"github.com/SenryLee/LD-anonymization-tool/internal/security"
	"github.com/SenryLee/LD-anonymization-tool/internal/vault"
)

// State tracks pipeline progress. A failed stage moves the pipeline to
// StateFailed from wherever it was.
type State int

const (
	StateIdle State = iota
	StateDetecting
	StateMasking
	StateSealing
	StateRewriting
	StateDone
	StateFailed
)

// String returns the state name for logs and errors.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDetecting:
		return "detecting"
	case StateMasking:
		return "masking"
	case StateSealing:
		return "sealing"
	case StateRewriting:
		return "rewriting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures one anonymization run.
type Options struct {
	Mode     masker.Mode
	Keywords []string
	Pattern  string
	Reveal   int
	MaskRune rune
	Checks   []string
	Priority masker.Priority

	// Password protects the restoration vault.
	Password *security.SecureString

	// OutputDir receives the masked document and vault. Empty means the
	// input's directory.
	OutputDir string

	// Bundle packs the masked document and vault into a single zip
	// instead of two loose files.
	Bundle bool
}

// Result describes a completed run.
type Result struct {
	State      State
	MaskedPath string
	VaultPath  string
	BundlePath string
	Summary    report.Summary
}

// Pipeline runs anonymization and restoration over single documents.
type Pipeline struct {
	observer *observability.StandardObserver
	state    State
}

// New creates a pipeline reporting timing to observer.
func New(observer *observability.StandardObserver) *Pipeline {
	return &Pipeline{observer: observer, state: StateIdle}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) fail(stage State, err error) error {
	p.state = StateFailed
	return fmt.Errorf("%s: %w", stage, err)
}

// Run anonymizes the document at inputPath. The password is validated
// before any masking work happens so a bad one fails fast.
func (p *Pipeline) Run(inputPath string, opts Options) (*Result, error) {
	started := time.Now()
	done := p.observer.StartTiming("pipeline", "run", inputPath)

	result, err := p.run(inputPath, opts, started)
	if err != nil {
		done(false, map[string]interface{}{"state": p.state.String()})
		return nil, err
	}
	done(true, map[string]interface{}{
		"state":      p.state.String(),
		"span_count": result.Summary.SpanCount,
	})
	return result, nil
}

func (p *Pipeline) run(inputPath string, opts Options, started time.Time) (*Result, error) {
	if err := vault.CheckPassword(opts.Password); err != nil {
		return nil, p.fail(StateIdle, err)
	}

	p.state = StateDetecting
	content, err := extract.FromFile(inputPath)
	if err != nil {
		return nil, p.fail(StateDetecting, err)
	}

	p.state = StateMasking
	maskOpts := masker.Options{
		Keywords:      opts.Keywords,
		KeywordReveal: -1,
		Pattern:       opts.Pattern,
		Reveal:        opts.Reveal,
		MaskRune:      opts.MaskRune,
		Priority:      opts.Priority,
		Catalog:       catalog.Builtin().Filter(catalog.Builtin().ParseChecks(opts.Checks)),
		// DOCX rewriting requires equal-length placeholders.
		LengthPreserving: content.Format == extract.FormatDOCX,
	}
	masked, records, err := masker.Mask(content.Text, opts.Mode, maskOpts)
	if err != nil {
		return nil, p.fail(StateMasking, err)
	}

	p.state = StateSealing
	blob, err := vault.Seal(records, opts.Password, vault.Metadata{
		SourceFormat:  string(content.Format),
		OriginalChars: len([]rune(content.Text)),
		Keywords:      len(opts.Keywords),
		PatternStats:  masker.PatternCounts(records),
	})
	if err != nil {
		return nil, p.fail(StateSealing, err)
	}

	maskedData, maskedExt, err := p.renderMasked(content, masked, records)
	if err != nil {
		return nil, err
	}

	vaultData, err := vault.Encode(blob)
	if err != nil {
		return nil, p.fail(StateSealing, err)
	}

	result := &Result{}
	if err := p.writeOutputs(inputPath, opts, maskedData, maskedExt, vaultData, result); err != nil {
		return nil, err
	}

	p.state = StateDone
	result.State = StateDone
	result.Summary = report.Summary{
		InputPath:     inputPath,
		InputFormat:   string(content.Format),
		Mode:          opts.Mode.String(),
		MaskedPath:    result.MaskedPath,
		VaultPath:     result.VaultPath,
		BundlePath:    result.BundlePath,
		CharCount:     len([]rune(content.Text)),
		SpanCount:     len(records),
		PatternCounts: masker.PatternCounts(records),
		Duration:      time.Since(started),
	}
	return result, nil
}

// renderMasked produces the masked document bytes and output extension.
// DOCX inputs are rewritten in place; text and PDF inputs produce a masked
// text file.
func (p *Pipeline) renderMasked(content *extract.Content, masked string, records []masker.Record) ([]byte, string, error) {
	if content.Format != extract.FormatDOCX {
		return []byte(masked), ".txt", nil
	}

	p.state = StateRewriting
	repls := make([]docx.Replacement, 0, len(records))
	for _, rec := range records {
		repls = append(repls, docx.Replacement{
			Offset: rec.Offset,
			Old:    rec.Original,
			New:    rec.Placeholder,
		})
	}
	if err := content.Doc.Rewrite(repls); err != nil {
		return nil, "", p.fail(StateRewriting, err)
	}
	data, err := content.Doc.Bytes()
	if err != nil {
		return nil, "", p.fail(StateRewriting, err)
	}
	return data, ".docx", nil
}

// writeOutputs writes the masked document and vault, either loose or
// bundled, and fills the paths into result.
func (p *Pipeline) writeOutputs(inputPath string, opts Options, maskedData []byte, maskedExt string, vaultData []byte, result *Result) error {
	stamp := time.Now().Format("20060102_150405")
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return p.fail(p.state, fmt.Errorf("creating output directory: %w", err))
	}

	maskedName := fmt.Sprintf("%s_masked_%s%s", stem, stamp, maskedExt)
	vaultName := fmt.Sprintf("%s_restore_%s.json", stem, stamp)

	if opts.Bundle {
		bundlePath := filepath.Join(dir, fmt.Sprintf("%s_anonymized_%s.zip", stem, stamp))
		if err := writeBundle(bundlePath, maskedName, maskedData, vaultName, vaultData); err != nil {
			return p.fail(p.state, err)
		}
		result.BundlePath = bundlePath
		return nil
	}

	maskedPath := filepath.Join(dir, maskedName)
	if err := os.WriteFile(maskedPath, maskedData, 0o644); err != nil {
		return p.fail(p.state, fmt.Errorf("writing masked document: %w", err))
	}
	vaultPath := filepath.Join(dir, vaultName)
	if err := os.WriteFile(vaultPath, vaultData, 0o600); err != nil {
		// A masked document without its vault cannot be restored;
		// remove it so a failed run leaves nothing behind.
		os.Remove(maskedPath)
		return p.fail(p.state, fmt.Errorf("writing vault: %w", err))
	}
	result.MaskedPath = maskedPath
	result.VaultPath = vaultPath
	return nil
}
