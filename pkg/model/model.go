// Package model holds the in-memory Draw.io diagram model.
//
// A [Model] is an arena of [Cell] values keyed by cell identifier. Parent
// and child relationships are identifier references resolved through the
// arena, so a model can be validated and walked without pointer cycles.
//
// Models are produced by [Parse] and are immutable afterwards. A parsed model
// always satisfies three invariants: exactly one root cell has no parent,
// every parent reference resolves, and every cell is reachable from the root.
package model

import (
	"maps"
	"slices"
)

// Point is a position in diagram units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geometry is the mxGeometry of a cell. For vertices X, Y, Width and Height
// describe the bounding box relative to the parent's origin. For edges the
// terminal points and waypoints are used instead.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Relative marks geometry expressed relative to the parent, as used by
	// edge labels.
	Relative bool `json:"relative,omitempty"`

	SourcePoint *Point  `json:"source_point,omitempty"`
	TargetPoint *Point  `json:"target_point,omitempty"`
	Offset      *Point  `json:"offset,omitempty"`
	Points      []Point `json:"points,omitempty"` // edge waypoints in order
}

// Cell is a vertex, edge or structural cell (root, layer) of a diagram.
type Cell struct {
	ID     string `json:"id"`
	Parent string `json:"parent,omitempty"` // empty for the root cell
	Value  string `json:"value,omitempty"`  // label text, possibly HTML
	Style  string `json:"style,omitempty"`  // opaque key=value;... blob

	Vertex bool   `json:"vertex,omitempty"`
	Edge   bool   `json:"edge,omitempty"`
	Source string `json:"source,omitempty"` // edge source cell id
	Target string `json:"target,omitempty"` // edge target cell id

	// Hidden is set by visible="0".
	Hidden bool `json:"hidden,omitempty"`

	Geometry *Geometry `json:"geometry,omitempty"`

	// Attrs holds attributes the parser does not interpret, verbatim,
	// including custom properties of <object>/<UserObject> wrappers.
	Attrs map[string]string `json:"attrs,omitempty"`

	children []string
}

// Children returns the identifiers of the cell's children in document order.
func (c *Cell) Children() []string { return c.children }

// Attr returns an uninterpreted attribute of the cell.
func (c *Cell) Attr(name string) (string, bool) {
	v, ok := c.Attrs[name]
	return v, ok
}

// Model is a validated diagram model.
type Model struct {
	root  string
	cells map[string]*Cell
	order []string
	attrs map[string]string
}

// Root returns the root cell.
func (m *Model) Root() *Cell { return m.cells[m.root] }

// Cell returns the cell with the given identifier.
func (m *Model) Cell(id string) (*Cell, bool) {
	c, ok := m.cells[id]
	return c, ok
}

// Cells returns all cells in document order.
func (m *Model) Cells() []*Cell {
	out := make([]*Cell, len(m.order))
	for i, id := range m.order {
		out[i] = m.cells[id]
	}
	return out
}

// Len returns the number of cells.
func (m *Model) Len() int { return len(m.order) }

// ChildCells returns the children of id, resolved through the arena.
func (m *Model) ChildCells(id string) []*Cell {
	c, ok := m.cells[id]
	if !ok {
		return nil
	}
	out := make([]*Cell, 0, len(c.children))
	for _, child := range c.children {
		out = append(out, m.cells[child])
	}
	return out
}

// Attrs returns the attributes of the mxGraphModel element (dx, grid,
// pageWidth, background and so on).
func (m *Model) Attrs() map[string]string { return maps.Clone(m.attrs) }

// Attr returns one mxGraphModel attribute.
func (m *Model) Attr(name string) (string, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

// Walk visits cells depth-first in document order starting at the root,
// passing each cell's depth (root = 0). Returning false from fn skips the
// cell's subtree.
func (m *Model) Walk(fn func(c *Cell, depth int) bool) {
	type frame struct {
		id    string
		depth int
	}
	stack := []frame{{m.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c := m.cells[f.id]
		if !fn(c, f.depth) {
			continue
		}
		for _, child := range slices.Backward(c.children) {
			stack = append(stack, frame{child, f.depth + 1})
		}
	}
}

// Ancestors returns the chain of parent identifiers of id, nearest first.
func (m *Model) Ancestors(id string) []string {
	var out []string
	c, ok := m.cells[id]
	for ok && c.Parent != "" {
		out = append(out, c.Parent)
		c, ok = m.cells[c.Parent]
	}
	return out
}

// Stats summarizes a model.
type Stats struct {
	Cells    int `json:"cells"`
	Vertices int `json:"vertices"`
	Edges    int `json:"edges"`
	Layers   int `json:"layers"` // direct children of the root
	Depth    int `json:"depth"`  // deepest cell, root = 0
}

// Stats counts the cells of the model.
func (m *Model) Stats() Stats {
	s := Stats{Cells: len(m.order), Layers: len(m.Root().children)}
	m.Walk(func(c *Cell, depth int) bool {
		if c.Vertex {
			s.Vertices++
		}
		if c.Edge {
			s.Edges++
		}
		s.Depth = max(s.Depth, depth)
		return true
	})
	return s
}
