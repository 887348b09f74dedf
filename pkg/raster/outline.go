package raster

import (
	"math"

	"github.com/matzehuels/drawview/pkg/scene"
)

// outline returns the closed polygon of a box shape, offset outward by d
// scene units (inward for negative d). k is the pixel scale used to choose
// how finely curves are flattened.
func outline(shape scene.Shape, r scene.Rect, radius, d, k float64) []scene.Point {
	r = r.Expand(d)
	if r.W < 0 || r.H < 0 {
		return nil
	}

	switch shape {
	case scene.ShapeEllipse:
		return ellipse(r, k)
	case scene.ShapeRhombus:
		return rhombus(r, d)
	case scene.ShapeRounded:
		if rr := radius + d; rr > 0 {
			return roundedRect(r, math.Min(rr, math.Min(r.W, r.H)/2), k)
		}
	}
	return []scene.Point{{X: r.X, Y: r.Y}, {X: r.MaxX(), Y: r.Y}, {X: r.MaxX(), Y: r.MaxY()}, {X: r.X, Y: r.MaxY()}}
}

func ellipse(r scene.Rect, k float64) []scene.Point {
	c := r.Center()
	rx, ry := r.W/2, r.H/2
	// Ramanujan's perimeter approximation.
	perim := math.Pi * (3*(rx+ry) - math.Sqrt((3*rx+ry)*(rx+3*ry)))
	n := (segments(perim*k) + 3) / 4 * 4 // keep the four extreme points
	out := make([]scene.Point, n)
	for i := range out {
		t := 2 * math.Pi * float64(i) / float64(n)
		out[i] = scene.Point{X: c.X + rx*math.Cos(t), Y: c.Y + ry*math.Sin(t)}
	}
	return out
}

// rhombus returns the diamond inscribed in r. r has already been expanded by
// d along both axes; the vertices are pushed further so that each edge is
// offset by exactly d from the original edge.
func rhombus(r scene.Rect, d float64) []scene.Point {
	c := r.Center()
	a, b := r.W/2-d, r.H/2-d // original half-diagonals
	if a > 0 && b > 0 && d != 0 {
		f := d * math.Sqrt(1/(a*a)+1/(b*b))
		a, b = a*(1+f), b*(1+f)
	} else {
		a, b = r.W/2, r.H/2
	}
	if a < 0 || b < 0 {
		return nil
	}
	return []scene.Point{{X: c.X, Y: c.Y - b}, {X: c.X + a, Y: c.Y}, {X: c.X, Y: c.Y + b}, {X: c.X - a, Y: c.Y}}
}

func roundedRect(r scene.Rect, radius, k float64) []scene.Point {
	n := max(3, segments(math.Pi/2*radius*k)/4)
	corners := []struct {
		cx, cy, start float64
	}{
		{r.MaxX() - radius, r.Y + radius, -math.Pi / 2},
		{r.MaxX() - radius, r.MaxY() - radius, 0},
		{r.X + radius, r.MaxY() - radius, math.Pi / 2},
		{r.X + radius, r.Y + radius, math.Pi},
	}
	out := make([]scene.Point, 0, 4*(n+1))
	for _, c := range corners {
		for i := 0; i <= n; i++ {
			t := c.start + math.Pi/2*float64(i)/float64(n)
			out = append(out, scene.Point{X: c.cx + radius*math.Cos(t), Y: c.cy + radius*math.Sin(t)})
		}
	}
	return out
}

// dashes splits a polyline into dash pieces of length dash separated by gaps
// of the same length.
func dashes(p []scene.Point, dash float64) [][]scene.Point {
	if dash <= 0 || len(p) < 2 {
		return [][]scene.Point{p}
	}

	var out [][]scene.Point
	var cur []scene.Point
	on, left := true, dash
	cur = append(cur, p[0])
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		seg := b.Sub(a)
		l := seg.Len()
		pos := 0.0
		for l-pos > left {
			pos += left
			q := a.Add(seg.Scale(pos / l))
			if on {
				out = append(out, append(cur, q))
				cur = nil
			} else {
				cur = []scene.Point{q}
			}
			on, left = !on, dash
		}
		left -= l - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}
