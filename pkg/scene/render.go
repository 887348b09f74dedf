package scene

import (
	"image/color"
	"math"

	"github.com/matzehuels/drawview/pkg/model"
	"github.com/matzehuels/drawview/pkg/settings"
)

// Renderer turns a diagram model into a scene.
type Renderer interface {
	Render(m *model.Model) (*Scene, error)
}

// RendererFunc adapts a function to [Renderer].
type RendererFunc func(m *model.Model) (*Scene, error)

// Render calls f(m).
func (f RendererFunc) Render(m *model.Model) (*Scene, error) { return f(m) }

// Defaults applied when a style does not say otherwise.
const (
	DefaultFontSize    = 11
	DefaultStrokeWidth = 1
	DefaultArrowSize   = 6
	DefaultArcSize     = 15 // percent of the shorter side
)

// Basic is the built-in renderer. It draws vertices as rectangles, rounded
// rectangles, ellipses or rhombi with their labels, and edges as polylines
// between terminals through their waypoints. Other Draw.io shapes fall back
// to rectangles.
type Basic struct {
	// FontSize overrides DefaultFontSize when positive.
	FontSize float64
}

// Render builds a scene from m. Hidden cells and their descendants are
// skipped. Elements are emitted in model order.
func (r Basic) Render(m *model.Model) (*Scene, error) {
	b := &builder{
		m:        m,
		fontSize: DefaultFontSize,
		origins:  make(map[string]Point),
		rects:    make(map[string]Rect),
		mids:     make(map[string]Point),
	}
	if r.FontSize > 0 {
		b.fontSize = r.FontSize
	}

	var vertices, edges []*model.Cell
	m.Walk(func(c *model.Cell, _ int) bool {
		if hidden(c) {
			return false
		}
		switch {
		case c.Vertex:
			vertices = append(vertices, c)
		case c.Edge:
			edges = append(edges, c)
		}
		return true
	})

	for _, c := range vertices {
		if c.Geometry != nil && !b.onEdge(c) {
			o := b.origin(c.Parent)
			g := c.Geometry
			b.rects[c.ID] = Rect{o.X + g.X, o.Y + g.Y, g.Width, g.Height}
		}
	}

	var out []Element
	m.Walk(func(c *model.Cell, _ int) bool {
		if hidden(c) {
			return false
		}
		switch {
		case c.Vertex:
			out = append(out, b.vertex(c)...)
		case c.Edge:
			out = append(out, b.edge(c)...)
		}
		return true
	})
	return New(out...), nil
}

func hidden(c *model.Cell) bool {
	return c.Hidden || ParseStyle(c.Style).Values["visible"] == "0"
}

type builder struct {
	m        *model.Model
	fontSize float64
	origins  map[string]Point
	rects    map[string]Rect
	mids     map[string]Point // edge id -> label anchor
}

// onEdge reports whether c is a label vertex positioned relative to its
// parent edge.
func (b *builder) onEdge(c *model.Cell) bool {
	if c.Geometry == nil || !c.Geometry.Relative {
		return false
	}
	p, ok := b.m.Cell(c.Parent)
	return ok && p.Edge
}

// origin returns the absolute position of a cell's coordinate system: the
// sum of the offsets of its vertex ancestors, including itself. Every cell on
// the way up is cached, so each origin is computed once.
func (b *builder) origin(id string) Point {
	var chain []*model.Cell
	var base Point
	for id != "" {
		if p, ok := b.origins[id]; ok {
			base = p
			break
		}
		c, ok := b.m.Cell(id)
		if !ok {
			break
		}
		chain = append(chain, c)
		id = c.Parent
	}

	p := base
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		if c.Vertex && c.Geometry != nil && !c.Geometry.Relative {
			p = p.Add(Point{c.Geometry.X, c.Geometry.Y})
		}
		b.origins[c.ID] = p
	}
	return p
}

func (b *builder) vertex(c *model.Cell) []Element {
	rect, ok := b.rects[c.ID]
	if !ok && b.onEdge(c) {
		mid, placed := b.mids[c.Parent]
		if placed {
			g := c.Geometry
			if g.Offset != nil {
				mid = mid.Add(Point{g.Offset.X, g.Offset.Y})
			}
			rect, ok = Rect{mid.X - g.Width/2, mid.Y - g.Height/2, g.Width, g.Height}, true
		}
	}
	if !ok {
		return nil
	}
	st := ParseStyle(c.Style)

	fill := st.Color("fillColor", settings.White)
	stroke := st.Color("strokeColor", settings.Black)
	if st.Has("text") || st.Has("group") || st.Has("edgeLabel") {
		fill = st.Color("fillColor", color.NRGBA{})
		stroke = st.Color("strokeColor", color.NRGBA{})
	}
	fill.A = opacity(fill.A, st.Float("fillOpacity", 100), st.Float("opacity", 100))
	stroke.A = opacity(stroke.A, st.Float("strokeOpacity", 100), st.Float("opacity", 100))

	box := &Box{
		ID:          c.ID,
		Shape:       st.shape(),
		Rect:        rect,
		Fill:        fill,
		Stroke:      stroke,
		StrokeWidth: st.Float("strokeWidth", DefaultStrokeWidth),
		Dashed:      st.Bool("dashed", false),
	}
	if box.Shape == ShapeRounded {
		box.Radius = math.Min(rect.W, rect.H) * st.Float("arcSize", DefaultArcSize) / 100
	}

	out := []Element{box}
	if t := b.label(c, st, rect); t != nil {
		out = append(out, t)
	}
	return out
}

func (b *builder) edge(c *model.Cell) []Element {
	st := ParseStyle(c.Style)
	o := b.origin(c.Parent)
	g := c.Geometry
	if g == nil {
		g = &model.Geometry{}
	}

	srcRect, hasSrc := b.rects[c.Source]
	dstRect, hasDst := b.rects[c.Target]

	var start, end Point
	switch {
	case hasSrc:
		start = srcRect.Center()
	case g.SourcePoint != nil:
		start = o.Add(Point{g.SourcePoint.X, g.SourcePoint.Y})
	default:
		return nil
	}
	switch {
	case hasDst:
		end = dstRect.Center()
	case g.TargetPoint != nil:
		end = o.Add(Point{g.TargetPoint.X, g.TargetPoint.Y})
	default:
		return nil
	}

	pts := []Point{start}
	for _, wp := range g.Points {
		pts = append(pts, o.Add(Point{wp.X, wp.Y}))
	}
	pts = append(pts, end)

	if hasSrc {
		pts[0] = clipToRect(srcRect, pts[1])
	}
	if hasDst {
		pts[len(pts)-1] = clipToRect(dstRect, pts[len(pts)-2])
	}
	pts = dedupe(pts)
	if len(pts) < 2 {
		return nil
	}

	stroke := st.Color("strokeColor", settings.Black)
	stroke.A = opacity(stroke.A, st.Float("strokeOpacity", 100), st.Float("opacity", 100))
	endArrow, _ := st.Get("endArrow")
	startArrow, _ := st.Get("startArrow")

	line := &Line{
		ID:          c.ID,
		Points:      pts,
		Stroke:      stroke,
		StrokeWidth: st.Float("strokeWidth", DefaultStrokeWidth),
		Dashed:      st.Bool("dashed", false),
		EndArrow:    endArrow != "none",
		StartArrow:  startArrow != "" && startArrow != "none",
		ArrowSize:   st.Float("endSize", DefaultArrowSize) + 2,
	}

	out := []Element{line}
	mid := midpoint(pts)
	if g.Offset != nil {
		mid = mid.Add(Point{g.Offset.X, g.Offset.Y})
	}
	b.mids[c.ID] = mid
	if t := b.label(c, st, Rect{X: mid.X, Y: mid.Y}); t != nil {
		out = append(out, t)
	}
	return out
}

func (b *builder) label(c *model.Cell, st Style, rect Rect) *Text {
	lines := LabelLines(c.Value, st.Bool("html", false))
	if len(lines) == 0 || st.Bool("noLabel", false) {
		return nil
	}
	t := &Text{
		ID:    c.ID,
		Rect:  rect,
		Lines: lines,
		Color: st.Color("fontColor", settings.Black),
		Size:  st.Float("fontSize", b.fontSize),
	}
	switch v, _ := st.Get("align"); v {
	case "left":
		t.HAlign = AlignLeft
	case "right":
		t.HAlign = AlignRight
	}
	switch v, _ := st.Get("verticalAlign"); v {
	case "top":
		t.VAlign = AlignTop
	case "bottom":
		t.VAlign = AlignBottom
	}
	return t
}

// opacity scales alpha by percentage opacities.
func opacity(a uint8, pcts ...float64) uint8 {
	f := float64(a)
	for _, p := range pcts {
		f *= math.Max(0, math.Min(100, p)) / 100
	}
	return uint8(math.Round(f))
}

// clipToRect returns where the segment from r's center toward p leaves r.
// p inside r yields the center.
func clipToRect(r Rect, p Point) Point {
	c := r.Center()
	d := p.Sub(c)
	if d.X == 0 && d.Y == 0 {
		return c
	}
	t := math.Inf(1)
	if d.X != 0 {
		t = math.Min(t, (r.W/2)/math.Abs(d.X))
	}
	if d.Y != 0 {
		t = math.Min(t, (r.H/2)/math.Abs(d.Y))
	}
	if t >= 1 {
		return c
	}
	return c.Add(d.Scale(t))
}

func dedupe(pts []Point) []Point {
	out := pts[:1]
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// midpoint returns the point halfway along the polyline.
func midpoint(pts []Point) Point {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i].Sub(pts[i-1]).Len()
	}
	half := total / 2
	for i := 1; i < len(pts); i++ {
		seg := pts[i].Sub(pts[i-1])
		l := seg.Len()
		if half <= l && l > 0 {
			return pts[i-1].Add(seg.Scale(half / l))
		}
		half -= l
	}
	return pts[len(pts)-1]
}
