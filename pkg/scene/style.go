package scene

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/matzehuels/drawview/pkg/settings"
)

// Style is a parsed Draw.io cell style such as
// "ellipse;whiteSpace=wrap;fillColor=#dae8fc;". Bare tokens without '=' are
// style names.
type Style struct {
	Names  []string
	Values map[string]string
}

// ParseStyle splits a style string. Later keys override earlier ones.
func ParseStyle(s string) Style {
	st := Style{Values: make(map[string]string)}
	for _, tok := range strings.Split(s, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			st.Names = append(st.Names, tok)
			continue
		}
		st.Values[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return st
}

// Has reports whether name appears as a bare style name.
func (s Style) Has(name string) bool {
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Get returns a style value.
func (s Style) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Bool reports whether key is "1" or "true", or def when it is absent.
func (s Style) Bool(key string, def bool) bool {
	v, ok := s.Values[key]
	if !ok {
		return def
	}
	return v == "1" || v == "true"
}

// Float returns a numeric style value, or def when absent or invalid.
func (s Style) Float(key string, def float64) float64 {
	v, ok := s.Values[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Color returns a color style value. "none" yields a transparent color;
// absent, "default" or unparsable values yield def.
func (s Style) Color(key string, def color.NRGBA) color.NRGBA {
	v, ok := s.Values[key]
	if !ok || v == "" || v == "default" {
		return def
	}
	if v == "none" {
		return color.NRGBA{}
	}
	c, err := settings.ParseColor(v)
	if err != nil {
		return def
	}
	return c
}

// shape picks the box outline from style names and the shape key.
func (s Style) shape() Shape {
	name, _ := s.Get("shape")
	switch {
	case name == "ellipse" || name == "doubleEllipse" || s.Has("ellipse"):
		return ShapeEllipse
	case name == "rhombus" || s.Has("rhombus"):
		return ShapeRhombus
	case s.Bool("rounded", false):
		return ShapeRounded
	}
	return ShapeRect
}
