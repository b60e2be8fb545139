// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds a one-page PDF showing each line at a decreasing Y
// position. Cross-reference offsets are computed from the buffer, so the
// file is structurally valid.
func minimalPDF(lines ...string) []byte {
	var content strings.Builder
	y := 720
	for _, line := range lines {
		fmt.Fprintf(&content, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", y, line)
		y -= 40
	}
	stream := content.String()

	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica " +
			"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)
	return buf.Bytes()
}

func TestFromPDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	data := minimalPDF("Phone 13812345678", "Card 4532015112830366")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	content, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, content.Format)
	assert.Equal(t, 1, content.PageCount)
	assert.Nil(t, content.Doc)

	assert.Contains(t, content.Text, "13812345678")
	assert.Contains(t, content.Text, "4532015112830366")

	// The higher line comes first; Y grows bottom-up in PDF coordinates.
	phone := strings.Index(content.Text, "13812345678")
	card := strings.Index(content.Text, "4532015112830366")
	assert.Less(t, phone, card)
}

func TestFromPDFFileRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nnot actually a pdf"), 0o644))

	_, err := FromFile(path)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
