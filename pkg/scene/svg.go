package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/matzehuels/drawview/pkg/settings"
)

// SVGOption configures [WriteSVG].
type SVGOption func(*svgWriter)

type svgWriter struct {
	padding    float64
	background *color.NRGBA
}

// WithPadding sets the margin around the content box (default 10).
func WithPadding(p float64) SVGOption { return func(w *svgWriter) { w.padding = p } }

// WithBackground fills the viewport before drawing.
func WithBackground(c color.NRGBA) SVGOption { return func(w *svgWriter) { w.background = &c } }

// WriteSVG writes s as a standalone SVG document whose viewBox is the
// content box plus padding.
func WriteSVG(out io.Writer, s *Scene, opts ...SVGOption) error {
	w := svgWriter{padding: 10}
	for _, opt := range opts {
		opt(&w)
	}

	vb := s.Bounds().Expand(w.padding)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%s" height="%s">`+"\n",
		num(vb.X), num(vb.Y), num(vb.W), num(vb.H), num(vb.W), num(vb.H))
	if w.background != nil && w.background.A > 0 {
		fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s"%s/>`+"\n",
			num(vb.X), num(vb.Y), num(vb.W), num(vb.H), paint("fill", *w.background))
	}

	for _, e := range s.Elements() {
		switch e := e.(type) {
		case *Box:
			writeBox(&buf, e)
		case *Line:
			writeLine(&buf, e)
		case *Text:
			writeText(&buf, e)
		}
	}

	buf.WriteString("</svg>\n")
	_, err := out.Write(buf.Bytes())
	return err
}

// RenderSVG returns s as SVG bytes.
func RenderSVG(s *Scene, opts ...SVGOption) []byte {
	var buf bytes.Buffer
	_ = WriteSVG(&buf, s, opts...)
	return buf.Bytes()
}

func writeBox(buf *bytes.Buffer, b *Box) {
	attrs := paint("fill", b.Fill) + strokeAttrs(b.Stroke, b.StrokeWidth, b.Dashed)
	r := b.Rect
	switch b.Shape {
	case ShapeEllipse:
		c := r.Center()
		fmt.Fprintf(buf, `  <ellipse id="%s" cx="%s" cy="%s" rx="%s" ry="%s"%s/>`+"\n",
			escape(b.ID), num(c.X), num(c.Y), num(r.W/2), num(r.H/2), attrs)
	case ShapeRhombus:
		c := r.Center()
		fmt.Fprintf(buf, `  <polygon id="%s" points="%s"%s/>`+"\n",
			escape(b.ID), points([]Point{{c.X, r.Y}, {r.MaxX(), c.Y}, {c.X, r.MaxY()}, {r.X, c.Y}}), attrs)
	default:
		rx := ""
		if b.Shape == ShapeRounded && b.Radius > 0 {
			rx = fmt.Sprintf(` rx="%s"`, num(b.Radius))
		}
		fmt.Fprintf(buf, `  <rect id="%s" x="%s" y="%s" width="%s" height="%s"%s%s/>`+"\n",
			escape(b.ID), num(r.X), num(r.Y), num(r.W), num(r.H), rx, attrs)
	}
}

func writeLine(buf *bytes.Buffer, l *Line) {
	if l.Stroke.A == 0 || len(l.Points) < 2 {
		return
	}
	fmt.Fprintf(buf, `  <polyline id="%s" points="%s" fill="none"%s/>`+"\n",
		escape(l.ID), points(l.Points), strokeAttrs(l.Stroke, l.StrokeWidth, l.Dashed))

	n := len(l.Points)
	if l.EndArrow {
		head := ArrowHead(l.Points[n-2], l.Points[n-1], l.ArrowSize)
		fmt.Fprintf(buf, `  <polygon points="%s"%s/>`+"\n", points(head[:]), paint("fill", l.Stroke))
	}
	if l.StartArrow {
		head := ArrowHead(l.Points[1], l.Points[0], l.ArrowSize)
		fmt.Fprintf(buf, `  <polygon points="%s"%s/>`+"\n", points(head[:]), paint("fill", l.Stroke))
	}
}

func writeText(buf *bytes.Buffer, t *Text) {
	b := t.Bounds()
	anchor, x := "middle", b.X+b.W/2
	switch t.HAlign {
	case AlignLeft:
		anchor, x = "start", b.X
	case AlignRight:
		anchor, x = "end", b.MaxX()
	}

	lh := t.Size * LineHeight
	fmt.Fprintf(buf, `  <text font-family="Helvetica, Arial, sans-serif" font-size="%s" text-anchor="%s"%s>`,
		num(t.Size), anchor, paint("fill", t.Color))
	for i, line := range t.Lines {
		// Baseline sits at 80% of the line box.
		y := b.Y + float64(i)*lh + lh*0.8
		fmt.Fprintf(buf, `<tspan x="%s" y="%s">%s</tspan>`, num(x), num(y), escape(line))
	}
	buf.WriteString("</text>\n")
}

func paint(attr string, c color.NRGBA) string {
	if c.A == 0 {
		return fmt.Sprintf(` %s="none"`, attr)
	}
	alpha := c.A
	c.A = 0xff
	out := fmt.Sprintf(` %s="%s"`, attr, settings.FormatColor(c))
	if alpha != 0xff {
		out += fmt.Sprintf(` %s-opacity="%s"`, attr, num(float64(alpha)/255))
	}
	return out
}

func strokeAttrs(c color.NRGBA, width float64, dashed bool) string {
	out := paint("stroke", c)
	if c.A == 0 {
		return out
	}
	out += fmt.Sprintf(` stroke-width="%s"`, num(width))
	if dashed {
		out += fmt.Sprintf(` stroke-dasharray="%s %s"`, num(3*width), num(3*width))
	}
	return out
}

func points(ps []Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
