// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Replacement swaps Old for New at a rune offset into LogicalText. Old and
// New must have the same rune count; rewriting never changes the document's
// character count, run count or paragraph structure.
type Replacement struct {
	Offset int
	Old    string
	New    string
}

// paraRef locates one paragraph inside the logical text.
type paraRef struct {
	partName string
	para     *paragraph
	start    int // global rune offset of the paragraph's first rune
	length   int
}

// edit is a replacement mapped into paragraph-local rune offsets.
type edit struct {
	start int
	runes []rune
}

// splice is one byte-range substitution within a part.
type splice struct {
	start, end int64
	data       []byte
}

// Rewrite applies equal-length replacements to the document text and
// splices the changes into the stored XML. Replacements that fall outside
// the text, cross a paragraph boundary, overlap each other, differ in
// length, or no longer match the document report ErrRewriteConflict; on any
// error the document is left unmodified.
func (d *Document) Rewrite(repls []Replacement) error {
	if len(repls) == 0 {
		return nil
	}

	refs := d.paragraphRefs()
	perPara, err := groupByParagraph(refs, repls)
	if err != nil {
		return err
	}

	splices := make(map[string][]splice)
	for i, edits := range perPara {
		ref := refs[i]
		runSplices, err := rewriteParagraph(ref.para, edits)
		if err != nil {
			return fmt.Errorf("%w: paragraph at offset %d", ErrRewriteConflict, ref.start)
		}
		splices[ref.partName] = append(splices[ref.partName], runSplices...)
	}

	for name, list := range splices {
		idx := d.index[name]
		d.entries[idx].data = applySplices(d.entries[idx].data, list)
	}

	// Offsets in the paragraph model are stale after splicing; rebuild it.
	return d.rescan()
}

// paragraphRefs flattens the paragraph model into logical-text coordinates.
func (d *Document) paragraphRefs() []paraRef {
	var refs []paraRef
	offset := 0
	for _, p := range d.parts {
		for _, para := range p.paragraphs {
			length := 0
			for _, r := range para.runs {
				length += len(r.text)
			}
			refs = append(refs, paraRef{partName: p.name, para: para, start: offset, length: length})
			offset += length + 1 // newline separator
		}
	}
	return refs
}

// groupByParagraph validates replacements and maps each one onto its
// containing paragraph.
func groupByParagraph(refs []paraRef, repls []Replacement) (map[int][]edit, error) {
	sorted := make([]Replacement, len(repls))
	copy(sorted, repls)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	perPara := make(map[int][]edit)
	prevEnd := -1
	ri := 0
	for _, repl := range sorted {
		oldRunes := []rune(repl.Old)
		newRunes := []rune(repl.New)
		if len(oldRunes) == 0 || len(oldRunes) != len(newRunes) {
			return nil, fmt.Errorf("%w: replacement at offset %d changes length", ErrRewriteConflict, repl.Offset)
		}
		if repl.Offset < prevEnd {
			return nil, fmt.Errorf("%w: overlapping replacements at offset %d", ErrRewriteConflict, repl.Offset)
		}
		prevEnd = repl.Offset + len(oldRunes)

		for ri < len(refs) && refs[ri].start+refs[ri].length < prevEnd {
			ri++
		}
		if ri == len(refs) || repl.Offset < refs[ri].start {
			return nil, fmt.Errorf("%w: replacement at offset %d crosses a paragraph boundary", ErrRewriteConflict, repl.Offset)
		}

		local := repl.Offset - refs[ri].start
		if got := paragraphSlice(refs[ri].para, local, len(oldRunes)); got != repl.Old {
			return nil, fmt.Errorf("%w: text mismatch at offset %d", ErrRewriteConflict, repl.Offset)
		}
		perPara[ri] = append(perPara[ri], edit{start: local, runes: newRunes})
	}
	return perPara, nil
}

// paragraphSlice returns n runes of paragraph text starting at local.
func paragraphSlice(para *paragraph, local, n int) string {
	var sb strings.Builder
	pos := 0
	for _, r := range para.runs {
		for _, ch := range r.text {
			if pos >= local && pos < local+n {
				sb.WriteRune(ch)
			}
			pos++
		}
	}
	return sb.String()
}

// rewriteParagraph redistributes paragraph text across its existing runs.
// Every rune of a replacement is written into the run owning the span's
// first rune; runs overlapped further right shrink accordingly. Run count
// and total character count are preserved.
func rewriteParagraph(para *paragraph, edits []edit) ([]splice, error) {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	// owner maps each paragraph rune index to its run.
	total := 0
	for _, r := range para.runs {
		total += len(r.text)
	}
	owner := make([]int, total)
	pos := 0
	for ri, r := range para.runs {
		for range r.text {
			owner[pos] = ri
			pos++
		}
	}

	old := make([]rune, 0, total)
	for _, r := range para.runs {
		old = append(old, r.text...)
	}

	newTexts := make([][]rune, len(para.runs))
	ei := 0
	for i := 0; i < total; {
		if ei < len(edits) && edits[ei].start == i {
			e := edits[ei]
			if i+len(e.runes) > total {
				return nil, ErrRewriteConflict
			}
			target := owner[i]
			newTexts[target] = append(newTexts[target], e.runes...)
			i += len(e.runes)
			ei++
			continue
		}
		newTexts[owner[i]] = append(newTexts[owner[i]], old[i])
		i++
	}
	if ei != len(edits) {
		return nil, ErrRewriteConflict
	}

	var splices []splice
	for ri, r := range para.runs {
		if string(newTexts[ri]) == string(r.text) {
			continue
		}
		splices = append(splices, runSplices(r, newTexts[ri])...)
	}
	return splices, nil
}

// runSplices builds the byte substitutions for one changed text node: the
// new escaped content, plus a regenerated start tag when the new text
// needs xml:space="preserve" and the old tag lacks it.
func runSplices(r *textNode, text []rune) []splice {
	var out []splice

	var content bytes.Buffer
	xml.EscapeText(&content, []byte(string(text)))
	out = append(out, splice{start: r.contentStart, end: r.contentEnd, data: content.Bytes()})

	if needsPreserve(text) && !r.preserve {
		out = append(out, splice{start: r.tagStart, end: r.contentStart, data: regenerateStartTag(r)})
	}
	return out
}

// needsPreserve reports whether text would lose leading or trailing
// whitespace without xml:space="preserve".
func needsPreserve(text []rune) bool {
	if len(text) == 0 {
		return false
	}
	return unicode.IsSpace(text[0]) || unicode.IsSpace(text[len(text)-1])
}

// regenerateStartTag rebuilds a w:t start tag with its original attributes
// plus xml:space="preserve".
func regenerateStartTag(r *textNode) []byte {
	var sb bytes.Buffer
	sb.WriteByte('<')
	sb.WriteString(r.rawName)
	for _, a := range r.attrs {
		if a.Name.Space == "xml" && a.Name.Local == "space" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(rawElementName(a.Name))
		sb.WriteString(`="`)
		xml.EscapeText(&sb, []byte(a.Value))
		sb.WriteByte('"')
	}
	sb.WriteString(` xml:space="preserve">`)
	return sb.Bytes()
}

// applySplices substitutes byte ranges back to front so earlier offsets
// stay valid.
func applySplices(data []byte, splices []splice) []byte {
	sort.Slice(splices, func(i, j int) bool { return splices[i].start > splices[j].start })
	for _, s := range splices {
		data = append(data[:s.start:s.start], append(s.data, data[s.end:]...)...)
	}
	return data
}

// rescan rebuilds the paragraph model from the current part bytes.
func (d *Document) rescan() error {
	for i, p := range d.parts {
		refreshed, err := scanPart(p.name, d.entries[d.index[p.name]].data)
		if err != nil {
			return err
		}
		d.parts[i] = refreshed
	}
	return nil
}
