// Package xmltree decodes XML documents into a small generic element tree.
//
// Draw.io files carry an open attribute schema (styles, custom properties),
// so callers walk elements and attributes generically instead of binding to
// fixed structs.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// Node is one XML element with its attributes, child elements and the
// character data directly inside it.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*Node    `xml:",any"`
	Text     string     `xml:",chardata"`
}

// Parse decodes text into a tree rooted at the document element.
// Syntax errors are returned with the decoder's diagnostic. Only comments,
// processing instructions and whitespace may follow the document element.
func Parse(text string) (*Node, error) {
	d := xml.NewDecoder(strings.NewReader(text))
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charsetReader

	var root Node
	if err := d.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("no root element")
		}
		return nil, err
	}
	if err := checkTrailing(d); err != nil {
		return nil, err
	}
	return &root, nil
}

// checkTrailing consumes the rest of the document after its root element.
func checkTrailing(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after document element", t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return fmt.Errorf("unexpected text after document element")
			}
		}
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Name returns the local name of the element.
func (n *Node) Name() string {
	return n.XMLName.Local
}

// Attr returns the value of the named attribute and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// Find returns the first element named name in document order, including n
// itself. It returns nil when there is no such element.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name() == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Child returns the first direct child named name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// TextContent returns the concatenated character data of n and all of its
// descendants.
func (n *Node) TextContent() string {
	if len(n.Children) == 0 {
		return n.Text
	}
	var b strings.Builder
	b.WriteString(n.Text)
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}
