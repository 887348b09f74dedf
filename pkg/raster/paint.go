package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/matzehuels/drawview/pkg/scene"
)

// pt is a point in layer pixels.
type pt struct{ x, y float64 }

// canvas paints scene elements into a premultiplied RGBA layer.
type canvas struct {
	img    *image.RGBA
	origin scene.Point // scene position of pixel (0,0)
	k      float64     // pixels per scene unit
	z      vector.Rasterizer
	faces  *faceCache
}

func newCanvas(img *image.RGBA, crop scene.Rect, k float64) *canvas {
	return &canvas{
		img:    img,
		origin: scene.Point{X: crop.X, Y: crop.Y},
		k:      k,
		faces:  newFaceCache(),
	}
}

func (c *canvas) px(p scene.Point) pt {
	return pt{(p.X - c.origin.X) * c.k, (p.Y - c.origin.Y) * c.k}
}

func (c *canvas) pxAll(ps []scene.Point) []pt {
	out := make([]pt, len(ps))
	for i, p := range ps {
		out[i] = c.px(p)
	}
	return out
}

func (c *canvas) paint(e scene.Element) {
	switch e := e.(type) {
	case *scene.Box:
		c.box(e)
	case *scene.Line:
		c.line(e)
	case *scene.Text:
		c.text(e)
	}
}

func (c *canvas) box(b *scene.Box) {
	if b.Fill.A > 0 {
		c.fill(b.Fill, c.pxAll(outline(b.Shape, b.Rect, b.Radius, 0, c.k)))
	}
	if b.Stroke.A == 0 || b.StrokeWidth <= 0 {
		return
	}

	d := b.StrokeWidth / 2
	if b.Dashed {
		ring := outline(b.Shape, b.Rect, b.Radius, 0, c.k)
		ring = append(ring, ring[0])
		for _, dash := range dashes(ring, 3*b.StrokeWidth) {
			c.fill(b.Stroke, strokePolyline(c.pxAll(dash), b.StrokeWidth*c.k)...)
		}
		return
	}

	outer := orient(c.pxAll(outline(b.Shape, b.Rect, b.Radius, d, c.k)), -1)
	polys := [][]pt{outer}
	if b.Rect.W > 2*d && b.Rect.H > 2*d {
		inner := orient(c.pxAll(outline(b.Shape, b.Rect, b.Radius, -d, c.k)), +1)
		polys = append(polys, inner)
	}
	c.fillRaw(b.Stroke, polys...)
}

func (c *canvas) line(l *scene.Line) {
	if l.Stroke.A == 0 || len(l.Points) < 2 {
		return
	}
	w := math.Max(l.StrokeWidth, 0.5) * c.k

	pieces := [][]scene.Point{l.Points}
	if l.Dashed {
		pieces = dashes(l.Points, 3*l.StrokeWidth)
	}
	for _, p := range pieces {
		c.fill(l.Stroke, strokePolyline(c.pxAll(p), w)...)
	}

	n := len(l.Points)
	if l.EndArrow {
		head := scene.ArrowHead(l.Points[n-2], l.Points[n-1], l.ArrowSize)
		c.fill(l.Stroke, c.pxAll(head[:]))
	}
	if l.StartArrow {
		head := scene.ArrowHead(l.Points[1], l.Points[0], l.ArrowSize)
		c.fill(l.Stroke, c.pxAll(head[:]))
	}
}

// fill paints the union of polys. Orientation is normalized so that
// overlapping pieces do not cancel out.
func (c *canvas) fill(col color.NRGBA, polys ...[]pt) {
	for i, p := range polys {
		polys[i] = orient(p, -1)
	}
	c.fillRaw(col, polys...)
}

// fillRaw rasterizes polys with their given orientation. Coverage adds up
// per winding direction and is clamped, so a ring is an outer polygon plus
// an inner one of opposite orientation.
func (c *canvas) fillRaw(col color.NRGBA, polys ...[]pt) {
	r, ok := polyBounds(polys)
	if !ok {
		return
	}

	c.z.Reset(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	for _, p := range polys {
		if len(p) < 3 {
			continue
		}
		c.z.MoveTo(float32(p[0].x-ox), float32(p[0].y-oy))
		for _, q := range p[1:] {
			c.z.LineTo(float32(q.x-ox), float32(q.y-oy))
		}
		c.z.ClosePath()
	}

	src := image.NewUniform(col)
	if r.In(c.img.Bounds()) {
		c.z.Draw(c.img, r, src, image.Point{})
		return
	}

	// Shapes reaching past the layer edge are painted through a scratch
	// image so the rasterizer never addresses pixels outside its target.
	scratch := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	c.z.Draw(scratch, scratch.Bounds(), src, image.Point{})
	draw.Draw(c.img, r, scratch, image.Point{}, draw.Over)
}

// polyBounds returns the integer pixel rectangle covering polys.
func polyBounds(polys [][]pt) (image.Rectangle, bool) {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, p := range polys {
		for _, q := range p {
			x0, y0 = math.Min(x0, q.x), math.Min(y0, q.y)
			x1, y1 = math.Max(x1, q.x), math.Max(y1, q.y)
		}
	}
	if !(x1 > x0 && y1 > y0) {
		return image.Rectangle{}, false
	}
	r := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	return r, !r.Empty()
}

// area returns the signed shoelace area of p.
func area(p []pt) float64 {
	var a float64
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].x*p[j].y - p[j].x*p[i].y
	}
	return a / 2
}

// orient returns p with the sign of its area matching sign, reversing the
// vertex order if needed.
func orient(p []pt, sign float64) []pt {
	if area(p)*sign >= 0 {
		return p
	}
	out := make([]pt, len(p))
	for i, q := range p {
		out[len(p)-1-i] = q
	}
	return out
}

// strokePolyline covers an open polyline of width w with one quad per
// segment and a round join at every interior vertex. Ends are butt caps.
func strokePolyline(p []pt, w float64) [][]pt {
	h := w / 2
	var polys [][]pt
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		dx, dy := b.x-a.x, b.y-a.y
		n := math.Hypot(dx, dy)
		if n == 0 {
			continue
		}
		nx, ny := -dy/n*h, dx/n*h
		polys = append(polys, []pt{
			{a.x + nx, a.y + ny}, {b.x + nx, b.y + ny},
			{b.x - nx, b.y - ny}, {a.x - nx, a.y - ny},
		})
	}
	for i := 1; i < len(p)-1; i++ {
		polys = append(polys, circle(p[i], h))
	}
	return polys
}

// circle approximates a disc of radius r.
func circle(c pt, r float64) []pt {
	n := segments(2 * math.Pi * r)
	out := make([]pt, n)
	for i := range out {
		t := 2 * math.Pi * float64(i) / float64(n)
		out[i] = pt{c.x + r*math.Cos(t), c.y + r*math.Sin(t)}
	}
	return out
}

// segments picks a vertex count for a curve of the given pixel length.
func segments(length float64) int {
	return int(math.Min(720, math.Max(12, math.Ceil(length/2))))
}
