package scene

import (
	"image/color"
	"slices"
	"testing"
)

func TestParseStyle(t *testing.T) {
	st := ParseStyle("ellipse;whiteSpace=wrap; fillColor=#dae8fc ;;strokeWidth=2;fillColor=#112233;")
	if !slices.Equal(st.Names, []string{"ellipse"}) {
		t.Errorf("Names = %v", st.Names)
	}
	if v, _ := st.Get("whiteSpace"); v != "wrap" {
		t.Errorf("whiteSpace = %q", v)
	}
	if got := st.Color("fillColor", color.NRGBA{}); got != (color.NRGBA{0x11, 0x22, 0x33, 0xff}) {
		t.Errorf("fillColor = %v, want last value", got)
	}
	if got := st.Float("strokeWidth", 1); got != 2 {
		t.Errorf("strokeWidth = %v", got)
	}
	if got := st.Float("missing", 7); got != 7 {
		t.Errorf("missing float = %v", got)
	}
}

func TestStyleColor(t *testing.T) {
	def := color.NRGBA{1, 2, 3, 255}
	st := ParseStyle("a=none;b=default;c=bogus;d=#ff0000")
	tests := map[string]color.NRGBA{
		"a":       {},
		"b":       def,
		"c":       def,
		"d":       {0xff, 0, 0, 0xff},
		"missing": def,
	}
	for key, want := range tests {
		if got := st.Color(key, def); got != want {
			t.Errorf("Color(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestStyleShape(t *testing.T) {
	tests := map[string]Shape{
		"":                    ShapeRect,
		"rounded=1;":          ShapeRounded,
		"rounded=0;":          ShapeRect,
		"ellipse;":            ShapeEllipse,
		"shape=ellipse;":      ShapeEllipse,
		"shape=doubleEllipse": ShapeEllipse,
		"rhombus;":            ShapeRhombus,
		"shape=cylinder3;":    ShapeRect,
	}
	for style, want := range tests {
		if got := ParseStyle(style).shape(); got != want {
			t.Errorf("shape(%q) = %v, want %v", style, got, want)
		}
	}
}

func TestLabelLines(t *testing.T) {
	tests := []struct {
		name  string
		value string
		html  bool
		want  []string
	}{
		{"plain", "Hello", false, []string{"Hello"}},
		{"plain newline", "a\nb", false, []string{"a", "b"}},
		{"plain keeps tags", "<b>x</b>", false, []string{"<b>x</b>"}},
		{"html tags", "<b>Bold</b> text", true, []string{"Bold text"}},
		{"html breaks", "one<br>two<div>three</div>", true, []string{"one", "two", "three"}},
		{"html entities", "a &amp; b&nbsp;c", true, []string{"a & b c"}},
		{"empty", "", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LabelLines(tt.value, tt.html); !slices.Equal(got, tt.want) {
				t.Errorf("LabelLines(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
