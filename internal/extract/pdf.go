// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// maxPDFPages bounds text extraction for very large documents.
const maxPDFPages = 50

// fromPDFFile validates the PDF structure with pdfcpu, then extracts page
// text with ledongthuc/pdf. PDF inputs are mask-only; there is no layout
// rewriter for them, so only the text matters here.
func fromPDFFile(path string) (*Content, error) {
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	pages := pageCount
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	type pageResult struct {
		pageNum int
		text    string
		err     error
	}
	results := make(chan pageResult, pages)
	for i := 1; i <= pages; i++ {
		go func(pageNum int) {
			p := r.Page(pageNum)
			if p.V.IsNull() {
				results <- pageResult{pageNum: pageNum, err: fmt.Errorf("null page %d", pageNum)}
				return
			}
			text, err := pageText(p)
			results <- pageResult{pageNum: pageNum, text: text, err: err}
		}(i)
	}

	pageTexts := make(map[int]string, pages)
	for i := 0; i < pages; i++ {
		result := <-results
		if result.err != nil {
			continue // skip unreadable pages, keep the rest
		}
		pageTexts[result.pageNum] = result.text
	}

	var buf bytes.Buffer
	for i := 1; i <= pages; i++ {
		text, ok := pageTexts[i]
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(strings.TrimRight(text, "\n"))
	}

	return &Content{
		Format:    FormatPDF,
		Text:      NormalizeText(buf.String()),
		PageCount: pageCount,
	}, nil
}

// pageText extracts one page, preferring row-based extraction for better
// spacing and falling back to the plain text stream.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	// Y grows bottom-up in PDF coordinates; read top rows first.
	sort.Slice(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sorted {
		line := rowText(row.Content)
		if strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	total := 0.0
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// rowText joins the text elements of one row left to right, inserting a
// space where the horizontal gap indicates a word boundary.
func rowText(texts []pdf.Text) string {
	elems := make([]pdf.Text, len(texts))
	copy(elems, texts)
	sort.Slice(elems, func(i, j int) bool { return elems[i].X < elems[j].X })

	var buf bytes.Buffer
	for i, t := range elems {
		buf.WriteString(t.S)
		if i == len(elems)-1 {
			break
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap := elems[i+1].X - (t.X + t.W); gap > fontSize*0.2 {
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}
