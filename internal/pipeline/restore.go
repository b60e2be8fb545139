// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/SenryLee/LD-anonymization-tool/internal/docx"
	"github.com/SenryLee/LD-anonymization-tool/internal/extract"
	"github.com/SenryLee/LD-anonymization-tool/internal/masker"
	"github.com/SenryLee/LD-anonymization-tool/internal/report"
	"github.com/SenryLee/LD-anonymization-tool/internal/security"
	"github.com/SenryLee/LD-anonymization-tool/internal/vault"
)

// maskedStemPattern matches the _masked_<timestamp> suffix this pipeline
// appends to anonymized output names.
var maskedStemPattern = regexp.MustCompile(`_masked_\d{8}_\d{6}$`)

// RestoreOptions configures one restoration run.
type RestoreOptions struct {
	// VaultPath locates the sealed restoration file.
	VaultPath string

	// Password unlocks the vault.
	Password *security.SecureString

	// OutputDir receives the restored document. Empty means the masked
	// document's directory.
	OutputDir string
}

// Restore reverses a masked document using its vault. The masked document
// must be the unmodified output of a previous run; any divergence surfaces
// as a rewrite or record mismatch before anything is written.
func (p *Pipeline) Restore(maskedPath string, opts RestoreOptions) (*Result, error) {
	started := time.Now()
	done := p.observer.StartTiming("pipeline", "restore", maskedPath)

	result, err := p.restore(maskedPath, opts, started)
	if err != nil {
		done(false, map[string]interface{}{"state": p.state.String()})
		return nil, err
	}
	done(true, map[string]interface{}{"state": p.state.String()})
	return result, nil
}

func (p *Pipeline) restore(maskedPath string, opts RestoreOptions, started time.Time) (*Result, error) {
	p.state = StateDetecting
	content, err := extract.FromFile(maskedPath)
	if err != nil {
		return nil, p.fail(StateDetecting, err)
	}

	p.state = StateSealing
	blob, err := vault.ReadFile(opts.VaultPath)
	if err != nil {
		return nil, p.fail(StateSealing, err)
	}
	records, err := vault.Open(blob, opts.Password)
	if err != nil {
		return nil, p.fail(StateSealing, err)
	}

	p.state = StateRewriting
	restoredData, ext, err := p.renderRestored(content, records)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("20060102_150405")
	stem := strings.TrimSuffix(filepath.Base(maskedPath), filepath.Ext(maskedPath))
	// Drop the _masked_<stamp> suffix from a previous run so restored
	// names do not accumulate.
	stem = maskedStemPattern.ReplaceAllString(stem, "")
	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(maskedPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, p.fail(StateRewriting, fmt.Errorf("creating output directory: %w", err))
	}

	restoredPath := filepath.Join(dir, fmt.Sprintf("%s_restored_%s%s", stem, stamp, ext))
	if err := os.WriteFile(restoredPath, restoredData, 0o644); err != nil {
		return nil, p.fail(StateRewriting, fmt.Errorf("writing restored document: %w", err))
	}

	p.state = StateDone
	return &Result{
		State: StateDone,
		Summary: report.Summary{
			InputPath:    maskedPath,
			InputFormat:  string(content.Format),
			Mode:         "restore",
			VaultPath:    opts.VaultPath,
			RestoredPath: restoredPath,
			CharCount:    len([]rune(content.Text)),
			SpanCount:    len(records),
			Duration:     time.Since(started),
		},
		MaskedPath: maskedPath,
		VaultPath:  opts.VaultPath,
	}, nil
}

// renderRestored splices the original spans back into the masked document.
func (p *Pipeline) renderRestored(content *extract.Content, records []masker.Record) ([]byte, string, error) {
	if content.Format == extract.FormatDOCX {
		repls := make([]docx.Replacement, 0, len(records))
		for _, rec := range records {
			repls = append(repls, docx.Replacement{
				Offset: rec.Offset,
				Old:    rec.Placeholder,
				New:    rec.Original,
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

	restored, err := masker.Restore(content.Text, records)
	if err != nil {
		return nil, "", p.fail(StateRewriting, err)
	}
	return []byte(restored), ".txt", nil
}
