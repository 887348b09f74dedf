package model

import (
	"math"
	"strconv"

	"github.com/matzehuels/drawview/internal/xmltree"
	"github.com/matzehuels/drawview/pkg/codec"
	errs "github.com/matzehuels/drawview/pkg/errors"
)

// Element names inside an mxGraphModel.
const (
	elemRoot       = "root"
	elemCell       = "mxCell"
	elemObject     = "object"
	elemUserObject = "UserObject"
	elemGeometry   = "mxGeometry"
	elemPoint      = "mxPoint"
	elemArray      = "Array"
)

// Attributes of mxCell that map to Cell fields. Anything else is kept in
// Cell.Attrs.
var cellFields = map[string]bool{
	"id": true, "parent": true, "value": true, "style": true,
	"vertex": true, "edge": true, "source": true, "target": true,
	"visible": true,
}

// Parse parses XML text into a validated model.
//
// The text may be a bare <mxGraphModel> or an <mxfile> wrapper whose first
// page holds the model as nested XML or as an encoded payload. Errors carry
// the codes PARSE_INVALID_XML, PARSE_NOT_A_DIAGRAM, PARSE_CORRUPT_MODEL or,
// for an undecodable page payload, DECODE_MALFORMED.
func Parse(xmlText string) (*Model, error) {
	root, err := xmltree.Parse(xmlText)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeParseInvalidXML, err, "invalid XML")
	}

	gm := root.Find(codec.ElemGraphModel)
	if gm == nil {
		inner, err := codec.DecodeFirstPage(root)
		if err != nil {
			return nil, err
		}
		pageRoot, err := xmltree.Parse(inner)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeParseInvalidXML, err, "invalid XML in diagram page")
		}
		if gm = pageRoot.Find(codec.ElemGraphModel); gm == nil {
			return nil, errs.New(errs.ErrCodeParseNotADiagram, codec.MsgMissingModel)
		}
	}

	return fromGraphModel(gm)
}

func fromGraphModel(gm *xmltree.Node) (*Model, error) {
	m := &Model{
		cells: make(map[string]*Cell),
		attrs: make(map[string]string, len(gm.Attrs)),
	}
	for _, a := range gm.Attrs {
		m.attrs[a.Name.Local] = a.Value
	}

	cellRoot := gm.Child(elemRoot)
	if cellRoot == nil {
		return nil, errs.New(errs.ErrCodeParseCorruptModel, "%s has no <%s> element", codec.ElemGraphModel, elemRoot)
	}

	for _, n := range cellRoot.Children {
		c, err := decodeCell(n)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		if _, dup := m.cells[c.ID]; dup {
			return nil, errs.New(errs.ErrCodeParseCorruptModel, "duplicate cell id %q", c.ID)
		}
		m.cells[c.ID] = c
		m.order = append(m.order, c.ID)
	}

	if err := m.link(); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeCell converts an mxCell, or an object/UserObject wrapping one, into
// a Cell. Other elements yield nil.
func decodeCell(n *xmltree.Node) (*Cell, error) {
	switch n.Name() {
	case elemCell:
		return decodeMxCell(n, nil)
	case elemObject, elemUserObject:
		inner := n.Child(elemCell)
		if inner == nil {
			// A wrapper without an mxCell is a standalone root or layer.
			inner = &xmltree.Node{}
		}
		return decodeMxCell(inner, n)
	}
	return nil, nil
}

func decodeMxCell(n, wrapper *xmltree.Node) (*Cell, error) {
	c := &Cell{
		ID:     n.AttrOr("id", ""),
		Parent: n.AttrOr("parent", ""),
		Value:  n.AttrOr("value", ""),
		Style:  n.AttrOr("style", ""),
		Vertex: n.AttrOr("vertex", "") == "1",
		Edge:   n.AttrOr("edge", "") == "1",
		Source: n.AttrOr("source", ""),
		Target: n.AttrOr("target", ""),
		Hidden: n.AttrOr("visible", "") == "0",
	}
	for _, a := range n.Attrs {
		if !cellFields[a.Name.Local] {
			c.setAttr(a.Name.Local, a.Value)
		}
	}

	if wrapper != nil {
		c.ID = wrapper.AttrOr("id", c.ID)
		for _, a := range wrapper.Attrs {
			switch a.Name.Local {
			case "id":
			case "label":
				c.Value = a.Value
			default:
				c.setAttr(a.Name.Local, a.Value)
			}
		}
	}

	if c.ID == "" {
		return nil, errs.New(errs.ErrCodeParseCorruptModel, "cell without id")
	}

	if g := n.Child(elemGeometry); g != nil {
		geo, err := decodeGeometry(g)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeParseCorruptModel, err, "cell %q", c.ID)
		}
		c.Geometry = geo
	}
	return c, nil
}

func (c *Cell) setAttr(name, value string) {
	if c.Attrs == nil {
		c.Attrs = make(map[string]string)
	}
	c.Attrs[name] = value
}

func decodeGeometry(n *xmltree.Node) (*Geometry, error) {
	g := &Geometry{Relative: n.AttrOr("relative", "") == "1"}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"x", &g.X}, {"y", &g.Y}, {"width", &g.Width}, {"height", &g.Height},
	} {
		v, err := floatAttr(n, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	for _, child := range n.Children {
		switch child.Name() {
		case elemPoint:
			p, err := decodePoint(child)
			if err != nil {
				return nil, err
			}
			switch child.AttrOr("as", "") {
			case "sourcePoint":
				g.SourcePoint = &p
			case "targetPoint":
				g.TargetPoint = &p
			case "offset":
				g.Offset = &p
			}
		case elemArray:
			if child.AttrOr("as", "") != "points" {
				continue
			}
			for _, pn := range child.Children {
				if pn.Name() != elemPoint {
					continue
				}
				p, err := decodePoint(pn)
				if err != nil {
					return nil, err
				}
				g.Points = append(g.Points, p)
			}
		}
	}
	return g, nil
}

func decodePoint(n *xmltree.Node) (Point, error) {
	x, err := floatAttr(n, "x")
	if err != nil {
		return Point{}, err
	}
	y, err := floatAttr(n, "y")
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// floatAttr reads an optional numeric attribute. Missing attributes are 0;
// unparsable or non-finite values are errors.
func floatAttr(n *xmltree.Node, name string) (float64, error) {
	s, ok := n.Attr(name)
	if !ok || s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeParseCorruptModel, "%s %s=%q is not a number", n.Name(), name, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errs.New(errs.ErrCodeParseCorruptModel, "%s %s=%q is not finite", n.Name(), name, s)
	}
	return v, nil
}
