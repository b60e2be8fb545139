// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package docx

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

type fixturePart struct {
	name string
	data string
}

// buildPackage assembles a minimal DOCX archive with the given extra parts
// appended after the standard ones.
func buildPackage(t *testing.T, body string, extra ...fixturePart) []byte {
	t.Helper()
	parts := []fixturePart{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", wrapDocument(body)},
	}
	parts = append(parts, extra...)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func wrapDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document xmlns:w="` + wordNS + `"><w:body>` + body + `</w:body></w:document>`
}

func wrapHeader(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:hdr xmlns:w="` + wordNS + `">` + body + `</w:hdr>`
}

func wrapFooter(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:ftr xmlns:w="` + wordNS + `">` + body + `</w:ftr>`
}

// para builds one paragraph with one run per text fragment.
func para(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, text := range texts {
		sb.WriteString("<w:r><w:t>")
		sb.WriteString(text)
		sb.WriteString("</w:t></w:r>")
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

func TestParseRequiresDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(contentTypesXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Parse(buf.Bytes())
	assert.ErrorIs(t, err, ErrMissingDocumentPart)
}

func TestParseRejectsUnrecognizedPrefix(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<ns0:document xmlns:ns0="` + wordNS + `"><ns0:body>` +
		`<ns0:p><ns0:r><ns0:t>正文</ns0:t></ns0:r></ns0:p>` +
		`</ns0:body></ns0:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range []fixturePart{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", body},
	} {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	// Text under a foreign prefix would silently survive every rewrite,
	// so the document is rejected instead.
	_, err := Parse(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no WordprocessingML elements")
}

func TestParseRejectsNonZip(t *testing.T) {
	_, err := Parse([]byte("this is not a zip archive"))
	assert.Error(t, err)
}

func TestLogicalTextFragmentedRuns(t *testing.T) {
	data := buildPackage(t, para("联系电话", "138", "12345678")+para("第二段"))
	doc, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "联系电话13812345678\n第二段", doc.LogicalText())
	assert.Equal(t, 19, doc.CharCount())
}

func TestLogicalTextEmptyAndSelfClosingRuns(t *testing.T) {
	body := `<w:p><w:r><w:t/></w:r><w:r><w:t>text</w:t></w:r><w:r><w:t></w:t></w:r></w:p>`
	doc, err := Parse(buildPackage(t, body))
	require.NoError(t, err)

	assert.Equal(t, "text", doc.LogicalText())
	require.Len(t, doc.parts[0].paragraphs, 1)
	assert.Len(t, doc.parts[0].paragraphs[0].runs, 3)
}

func TestLogicalTextTableAndHeaderFooterOrder(t *testing.T) {
	table := "<w:tbl><w:tr><w:tc>" + para("单元格一") + "</w:tc><w:tc>" + para("单元格二") + "</w:tc></w:tr></w:tbl>"
	data := buildPackage(t, para("正文")+table,
		fixturePart{"word/header1.xml", wrapHeader(para("页眉"))},
		fixturePart{"word/footer1.xml", wrapFooter(para("页脚"))},
	)

	doc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "正文\n单元格一\n单元格二\n页眉\n页脚", doc.LogicalText())
}

func TestRewriteSingleRun(t *testing.T) {
	doc, err := Parse(buildPackage(t, para("电话13812345678备用")))
	require.NoError(t, err)

	err = doc.Rewrite([]Replacement{{Offset: 2, Old: "13812345678", New: "138********"}})
	require.NoError(t, err)
	assert.Equal(t, "电话138********备用", doc.LogicalText())

	// The rewritten package still parses and carries the change.
	out, err := doc.Bytes()
	require.NoError(t, err)
	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "电话138********备用", reparsed.LogicalText())
}

func TestRewriteCrossRunSpan(t *testing.T) {
	doc, err := Parse(buildPackage(t, para("联系电话", "138", "12345678")))
	require.NoError(t, err)

	err = doc.Rewrite([]Replacement{{Offset: 4, Old: "13812345678", New: "138********"}})
	require.NoError(t, err)
	assert.Equal(t, "联系电话138********", doc.LogicalText())

	// The span's runes all land in the first overlapping run; later runs
	// shrink but survive, so run formatting boundaries stay intact.
	runs := doc.parts[0].paragraphs[0].runs
	require.Len(t, runs, 3)
	assert.Equal(t, "联系电话", string(runs[0].text))
	assert.Equal(t, "138********", string(runs[1].text))
	assert.Equal(t, "", string(runs[2].text))
	assert.Equal(t, 15, doc.CharCount())
}

func TestRewriteThenRestoreRoundTrip(t *testing.T) {
	doc, err := Parse(buildPackage(t, para("联系电话", "138", "12345678")+para("备注A&amp;B公司")))
	require.NoError(t, err)
	originalText := doc.LogicalText()

	require.NoError(t, doc.Rewrite([]Replacement{
		{Offset: 4, Old: "13812345678", New: "138********"},
		{Offset: 18, Old: "A&B", New: "***"},
	}))
	assert.Equal(t, "联系电话138********\n备注***公司", doc.LogicalText())

	require.NoError(t, doc.Rewrite([]Replacement{
		{Offset: 4, Old: "138********", New: "13812345678"},
		{Offset: 18, Old: "***", New: "A&B"},
	}))
	assert.Equal(t, originalText, doc.LogicalText())

	// Restored ampersand must be escaped in the stored XML.
	raw := doc.entries[doc.index["word/document.xml"]].data
	assert.Contains(t, string(raw), "A&amp;B")
}

func TestRewriteInsideTableAndHeader(t *testing.T) {
	table := "<w:tbl><w:tr><w:tc>" + para("卡号4532015112830366") + "</w:tc></w:tr></w:tbl>"
	data := buildPackage(t, table,
		fixturePart{"word/header1.xml", wrapHeader(para("机密文件"))},
	)
	doc, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "卡号4532015112830366\n机密文件", doc.LogicalText())

	require.NoError(t, doc.Rewrite([]Replacement{
		{Offset: 2, Old: "4532015112830366", New: "4532************"},
		{Offset: 19, Old: "机密", New: "██"},
	}))
	assert.Equal(t, "卡号4532************\n██文件", doc.LogicalText())
}

func TestRewriteAddsSpacePreserve(t *testing.T) {
	doc, err := Parse(buildPackage(t, para("abcdef")))
	require.NoError(t, err)

	require.NoError(t, doc.Rewrite([]Replacement{{Offset: 0, Old: "abcdef", New: "ab**  "}}))

	raw := string(doc.entries[doc.index["word/document.xml"]].data)
	assert.Contains(t, raw, `<w:t xml:space="preserve">ab**  </w:t>`)
}

func TestRewriteConflicts(t *testing.T) {
	build := func() *Document {
		doc, err := Parse(buildPackage(t, para("第一段落文本")+para("第二段落文本")))
		require.NoError(t, err)
		return doc
	}

	tests := []struct {
		name  string
		repls []Replacement
	}{
		{"length mismatch", []Replacement{{Offset: 0, Old: "第一", New: "███"}}},
		{"text mismatch", []Replacement{{Offset: 0, Old: "其他", New: "██"}}},
		{"crosses paragraph boundary", []Replacement{{Offset: 4, Old: "文本\n第二", New: "█████"}}},
		{"past end of text", []Replacement{{Offset: 12, Old: "文本", New: "██"}}},
		{"overlapping", []Replacement{
			{Offset: 0, Old: "第一段", New: "███"},
			{Offset: 2, Old: "段落", New: "██"},
		}},
		{"empty replacement", []Replacement{{Offset: 0, Old: "", New: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := build()
			before := doc.LogicalText()
			err := doc.Rewrite(tt.repls)
			assert.ErrorIs(t, err, ErrRewriteConflict)
			assert.Equal(t, before, doc.LogicalText(), "failed rewrite must not modify the document")
		})
	}
}

func TestBytesPreservesOtherEntries(t *testing.T) {
	data := buildPackage(t, para("文本"),
		fixturePart{"word/media/image1.png", "\x89PNG fake image bytes"},
	)
	doc, err := Parse(data)
	require.NoError(t, err)
	require.NoError(t, doc.Rewrite([]Replacement{{Offset: 0, Old: "文本", New: "██"}}))

	out, err := doc.Bytes()
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)

	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	assert.Equal(t, []string{
		"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/media/image1.png",
	}, names, "entry order must match the source archive")
}
