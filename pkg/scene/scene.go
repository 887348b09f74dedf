// Package scene is the vector scene produced by rendering a diagram model.
//
// A [Scene] is an immutable list of drawing elements in scene units, 96 per
// inch, together with the content bounding box of those elements. Scenes are
// produced by a [Renderer] and consumed by the raster exporter or the SVG
// sink ([WriteSVG]).
package scene

import (
	"image/color"
	"math"
)

// ReferenceDPI is the resolution of scene coordinates.
const ReferenceDPI = 96

// Point is a position in scene units.
type Point struct{ X, Y float64 }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p*k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the distance of p from the origin.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Rect is an axis-aligned rectangle. Width and height are never negative for
// rectangles built by this package.
type Rect struct{ X, Y, W, H float64 }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Center returns the center point.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	x0, y0 := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	x1, y1 := math.Max(r.MaxX(), o.MaxX()), math.Max(r.MaxY(), o.MaxY())
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{r.X - d, r.Y - d, r.W + 2*d, r.H + 2*d}
}

// Shape is the outline of a [Box].
type Shape int

const (
	ShapeRect Shape = iota
	ShapeRounded
	ShapeEllipse
	ShapeRhombus
)

// HAlign and VAlign position text inside its box.
type (
	HAlign int
	VAlign int
)

const (
	AlignCenter HAlign = iota
	AlignLeft
	AlignRight
)

const (
	AlignMiddle VAlign = iota
	AlignTop
	AlignBottom
)

// Element is one drawing primitive: *Box, *Line or *Text.
type Element interface {
	Bounds() Rect
	isElement()
}

// Box is a filled and stroked vertex shape. A zero-alpha Fill or Stroke is
// not painted.
type Box struct {
	ID          string
	Shape       Shape
	Rect        Rect
	Radius      float64 // corner radius for ShapeRounded
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Dashed      bool
}

// Line is an open polyline, optionally ending in an arrowhead.
type Line struct {
	ID          string
	Points      []Point
	Stroke      color.NRGBA
	StrokeWidth float64
	Dashed      bool
	StartArrow  bool
	EndArrow    bool
	ArrowSize   float64
}

// Text is a block of label lines laid out inside Rect. Rect may have zero
// size, in which case it is an anchor point.
type Text struct {
	ID     string
	Rect   Rect
	Lines  []string
	Color  color.NRGBA
	Size   float64 // font size in scene units
	HAlign HAlign
	VAlign VAlign
}

func (*Box) isElement()  {}
func (*Line) isElement() {}
func (*Text) isElement() {}

// Bounds returns the box outline.
func (b *Box) Bounds() Rect { return b.Rect }

// Bounds returns the extent of the polyline vertices.
func (l *Line) Bounds() Rect {
	if len(l.Points) == 0 {
		return Rect{}
	}
	x0, y0 := l.Points[0].X, l.Points[0].Y
	x1, y1 := x0, y0
	for _, p := range l.Points[1:] {
		x0, y0 = math.Min(x0, p.X), math.Min(y0, p.Y)
		x1, y1 = math.Max(x1, p.X), math.Max(y1, p.Y)
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Bounds returns the estimated extent of the laid-out lines, which may
// overflow Rect.
func (t *Text) Bounds() Rect {
	w, h := t.Extent()
	var x, y float64
	switch t.HAlign {
	case AlignLeft:
		x = t.Rect.X
	case AlignRight:
		x = t.Rect.MaxX() - w
	default:
		x = t.Rect.X + (t.Rect.W-w)/2
	}
	switch t.VAlign {
	case AlignTop:
		y = t.Rect.Y
	case AlignBottom:
		y = t.Rect.MaxY() - h
	default:
		y = t.Rect.Y + (t.Rect.H-h)/2
	}
	return Rect{x, y, w, h}
}

// Text metrics used for layout estimates.
const (
	CharWidth  = 0.55 // average advance per rune, relative to font size
	LineHeight = 1.2  // baseline distance, relative to font size
)

// Extent estimates the width and height of the text block.
func (t *Text) Extent() (w, h float64) {
	longest := 0
	for _, l := range t.Lines {
		longest = max(longest, len([]rune(l)))
	}
	return float64(longest) * t.Size * CharWidth, float64(len(t.Lines)) * t.Size * LineHeight
}

// Scene is an immutable rendered diagram.
type Scene struct {
	elements []Element
	bounds   Rect
}

// New builds a scene from elements drawn in order.
func New(elements ...Element) *Scene {
	s := &Scene{elements: elements}
	for i, e := range elements {
		if i == 0 {
			s.bounds = e.Bounds()
			continue
		}
		s.bounds = s.bounds.Union(e.Bounds())
	}
	return s
}

// Elements returns the elements in paint order. The slice must not be
// modified.
func (s *Scene) Elements() []Element { return s.elements }

// Bounds returns the content bounding box. An empty scene has a zero box.
func (s *Scene) Bounds() Rect { return s.bounds }

// FitScale returns the zoom factor that fits the content box into a w×h
// viewport while preserving its aspect ratio. It returns 0 for an empty
// scene or viewport.
func (s *Scene) FitScale(w, h float64) float64 {
	b := s.bounds
	if b.Empty() || w <= 0 || h <= 0 {
		return 0
	}
	return math.Min(w/b.W, h/b.H)
}

// ArrowHead returns the triangle of an arrowhead of the given length at the
// end of the segment from → tip.
func ArrowHead(from, tip Point, size float64) [3]Point {
	d := tip.Sub(from)
	n := d.Len()
	if n == 0 {
		return [3]Point{tip, tip, tip}
	}
	u := d.Scale(1 / n)
	base := tip.Sub(u.Scale(size))
	perp := Point{-u.Y, u.X}.Scale(size / 2)
	return [3]Point{tip, base.Add(perp), base.Sub(perp)}
}
