package codec

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/matzehuels/drawview/internal/xmltree"
	errs "github.com/matzehuels/drawview/pkg/errors"
)

// Element names of the Draw.io file format.
const (
	ElemFile       = "mxfile"
	ElemDiagram    = "diagram"
	ElemGraphModel = "mxGraphModel"
)

// MsgMissingModel is the diagnostic for documents that hold no graph model.
const MsgMissingModel = "Not a valid Draw.io file: missing mxGraphModel element"

// Page describes one <diagram> page of a wrapper document.
type Page struct {
	Name       string `json:"name"`
	ID         string `json:"id"`
	Compressed bool   `json:"compressed"` // page content is an encoded blob rather than nested XML
}

// Unwrap resolves XML text to the text that holds the graph model of the
// first page.
//
// A document that already contains an mxGraphModel element, bare or nested
// inside the wrapper, is returned as-is. Otherwise the text content of the
// first <diagram> element is decoded with [DecodePage]. A wrapper with
// neither yields [errs.ErrCodeParseNotADiagram].
func Unwrap(doc string) (string, error) {
	root, err := xmltree.Parse(doc)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeParseInvalidXML, err, "invalid XML")
	}
	if root.Find(ElemGraphModel) != nil {
		return doc, nil
	}
	return DecodeFirstPage(root)
}

// DecodeFirstPage decodes the content of the first <diagram> element below
// root. Pages with nested XML are returned as their text content, which is
// only meaningful for encoded pages; use [Unwrap] for documents of unknown
// shape.
func DecodeFirstPage(root *xmltree.Node) (string, error) {
	page := root.Find(ElemDiagram)
	if page == nil {
		return "", errs.New(errs.ErrCodeParseNotADiagram, MsgMissingModel)
	}

	content := page.TextContent()
	if strings.TrimSpace(content) == "" {
		return "", errs.New(errs.ErrCodeParseNotADiagram, "first %s page is empty", ElemDiagram)
	}
	return DecodePage(content)
}

// Pages lists the <diagram> pages of a wrapper document in document order.
// A bare graph model has no pages.
func Pages(doc string) ([]Page, error) {
	root, err := xmltree.Parse(doc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeParseInvalidXML, err, "invalid XML")
	}
	if root.Name() != ElemFile {
		return nil, nil
	}

	var pages []Page
	for _, c := range root.Children {
		if c.Name() != ElemDiagram {
			continue
		}
		pages = append(pages, Page{
			Name:       c.AttrOr("name", ""),
			ID:         c.AttrOr("id", ""),
			Compressed: c.Child(ElemGraphModel) == nil && strings.TrimSpace(c.Text) != "",
		})
	}
	return pages, nil
}

// ModelElement returns the source text of the first mxGraphModel element in
// doc, resolving encoded pages with [Unwrap] first. The result is suitable
// input for [Compress].
func ModelElement(doc string) (string, error) {
	text, err := Unwrap(doc)
	if err != nil {
		return "", err
	}

	d := xml.NewDecoder(strings.NewReader(text))
	d.Strict = false
	start, depth := int64(-1), 0
	for {
		offset := d.InputOffset()
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errs.Wrap(errs.ErrCodeParseInvalidXML, err, "invalid XML")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if start < 0 && t.Name.Local == ElemGraphModel {
				start = offset
			}
			if start >= 0 {
				depth++
			}
		case xml.EndElement:
			if start < 0 {
				continue
			}
			if depth--; depth == 0 {
				return text[start:d.InputOffset()], nil
			}
		}
	}
	return "", errs.New(errs.ErrCodeParseNotADiagram, MsgMissingModel)
}
