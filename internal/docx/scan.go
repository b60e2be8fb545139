// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// part is one XML part with its paragraph model. Byte offsets in run nodes
// point into data.
type part struct {
	name       string
	paragraphs []*paragraph
	sawWordML  bool
}

// paragraph groups the text nodes of one w:p element in document order.
type paragraph struct {
	runs []*textNode
}

// textNode is one w:t element. tagStart/contentStart delimit the start tag
// as written; contentStart/contentEnd delimit the raw content bytes.
type textNode struct {
	text []rune

	tagStart     int64
	contentStart int64
	contentEnd   int64

	rawName  string
	attrs    []xml.Attr
	preserve bool
}

// scanPart builds the paragraph model for one XML part. It uses RawToken so
// offsets map directly onto the stored bytes, and it never rewrites any XML
// it does not have to.
func scanPart(name string, data []byte) (*part, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	p := &part{name: name}
	var para *paragraph
	var node *textNode
	depth := 0 // w:p nesting guard for text boxes

	for {
		prev := dec.InputOffset()
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx: parsing %s: %w", name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == "w" {
				p.sawWordML = true
			}
			switch {
			case isWordML(t.Name, "p"):
				depth++
				if depth == 1 {
					para = &paragraph{}
				}
			case isWordML(t.Name, "t") && para != nil:
				node = &textNode{
					tagStart:     prev,
					contentStart: dec.InputOffset(),
					rawName:      rawElementName(t.Name),
					attrs:        t.Attr,
					preserve:     hasSpacePreserve(t.Attr),
				}
			}

		case xml.CharData:
			if node != nil {
				node.text = append(node.text, []rune(string(t))...)
			}

		case xml.EndElement:
			switch {
			case isWordML(t.Name, "t"):
				if node != nil {
					node.contentEnd = prev
					if node.contentEnd < node.contentStart {
						// Self-closing tag; the node holds no text.
						node.contentEnd = node.contentStart
					}
					para.runs = append(para.runs, node)
					node = nil
				}
			case isWordML(t.Name, "p"):
				if depth > 0 {
					depth--
				}
				if depth == 0 && para != nil {
					p.paragraphs = append(p.paragraphs, para)
					para = nil
				}
			}
		}
	}

	return p, nil
}

// isWordML matches an element in the WordprocessingML namespace prefix.
// RawToken leaves prefixes untranslated, so Space carries the prefix.
func isWordML(name xml.Name, local string) bool {
	return name.Space == "w" && name.Local == local
}

// rawElementName reconstructs the element name as written in the source.
func rawElementName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// hasSpacePreserve reports whether the attributes carry
// xml:space="preserve".
func hasSpacePreserve(attrs []xml.Attr) bool {
	for _, a := range attrs {
		if a.Name.Space == "xml" && a.Name.Local == "space" && a.Value == "preserve" {
			return true
		}
	}
	return false
}
