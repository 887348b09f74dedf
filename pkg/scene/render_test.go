package scene

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/drawview/pkg/model"
	"github.com/matzehuels/drawview/pkg/settings"
)

func render(t *testing.T, doc string) *Scene {
	t.Helper()
	m, err := model.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Basic{}.Render(m)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return s
}

const twoBoxes = `<mxGraphModel><root>
  <mxCell id="0"/>
  <mxCell id="1" parent="0"/>
  <mxCell id="a" value="A" style="rounded=1;fillColor=#dae8fc;strokeColor=#6c8ebf;" vertex="1" parent="1">
    <mxGeometry x="0" y="0" width="100" height="50" as="geometry"/>
  </mxCell>
  <mxCell id="b" value="B" style="ellipse;" vertex="1" parent="1">
    <mxGeometry x="200" y="0" width="50" height="50" as="geometry"/>
  </mxCell>
  <mxCell id="e" value="link" edge="1" parent="1" source="a" target="b">
    <mxGeometry relative="1" as="geometry"/>
  </mxCell>
</root></mxGraphModel>`

func TestBasicRender(t *testing.T) {
	s := render(t, twoBoxes)

	var boxes []*Box
	var lines []*Line
	var texts []*Text
	for _, e := range s.Elements() {
		switch e := e.(type) {
		case *Box:
			boxes = append(boxes, e)
		case *Line:
			lines = append(lines, e)
		case *Text:
			texts = append(texts, e)
		}
	}
	if len(boxes) != 2 || len(lines) != 1 || len(texts) != 3 {
		t.Fatalf("got %d boxes, %d lines, %d texts", len(boxes), len(lines), len(texts))
	}

	a := boxes[0]
	if a.Shape != ShapeRounded || a.Fill != (color.NRGBA{0xda, 0xe8, 0xfc, 0xff}) {
		t.Errorf("box a = %+v", a)
	}
	if math.Abs(a.Radius-7.5) > 1e-9 {
		t.Errorf("radius = %v, want 7.5", a.Radius)
	}
	if boxes[1].Shape != ShapeEllipse || boxes[1].Fill != settings.White {
		t.Errorf("box b = %+v", boxes[1])
	}

	l := lines[0]
	if len(l.Points) != 2 {
		t.Fatalf("edge points = %v", l.Points)
	}
	if !near(l.Points[0], Point{100, 25}) || !near(l.Points[1], Point{200, 25}) {
		t.Errorf("edge clipped to %v, want (100,25)-(200,25)", l.Points)
	}
	if !l.EndArrow || l.StartArrow {
		t.Errorf("arrows = start %v end %v", l.StartArrow, l.EndArrow)
	}

	want := Rect{0, 0, 250, 50}
	if got := s.Bounds(); got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
}

func TestBasicRenderRelativeChildren(t *testing.T) {
	s := render(t, `<mxGraphModel><root>
	  <mxCell id="0"/>
	  <mxCell id="1" parent="0"/>
	  <mxCell id="g" style="group" vertex="1" parent="1">
	    <mxGeometry x="100" y="100" width="200" height="200" as="geometry"/>
	  </mxCell>
	  <mxCell id="c" vertex="1" parent="g">
	    <mxGeometry x="10" y="20" width="30" height="40" as="geometry"/>
	  </mxCell>
	</root></mxGraphModel>`)

	var child *Box
	for _, e := range s.Elements() {
		if b, ok := e.(*Box); ok && b.ID == "c" {
			child = b
		}
	}
	if child == nil {
		t.Fatal("child box missing")
	}
	if child.Rect != (Rect{110, 120, 30, 40}) {
		t.Errorf("child rect = %+v, want offset by group origin", child.Rect)
	}
	if g := s.Elements()[0].(*Box); g.Fill.A != 0 || g.Stroke.A != 0 {
		t.Errorf("group should not be painted: %+v", g)
	}
}

func TestBasicRenderNestedGroups(t *testing.T) {
	const depth = 200
	var doc strings.Builder
	doc.WriteString(`<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/>`)
	parent := "1"
	for i := 0; i < depth; i++ {
		id := fmt.Sprintf("g%d", i)
		fmt.Fprintf(&doc, `<mxCell id="%s" style="group" vertex="1" parent="%s"><mxGeometry x="1" y="2" width="10" height="10" as="geometry"/></mxCell>`, id, parent)
		parent = id
	}
	fmt.Fprintf(&doc, `<mxCell id="leaf" vertex="1" parent="%s"><mxGeometry x="5" y="5" width="3" height="4" as="geometry"/></mxCell>`, parent)
	doc.WriteString(`</root></mxGraphModel>`)

	s := render(t, doc.String())
	for _, e := range s.Elements() {
		b, ok := e.(*Box)
		if !ok {
			continue
		}
		switch b.ID {
		case "leaf":
			if b.Rect != (Rect{depth + 5, 2*depth + 5, 3, 4}) {
				t.Errorf("leaf rect = %+v", b.Rect)
			}
		case "g99":
			if b.Rect != (Rect{100, 200, 10, 10}) {
				t.Errorf("g99 rect = %+v", b.Rect)
			}
		}
	}
}

func TestBasicRenderSkipsHidden(t *testing.T) {
	s := render(t, `<mxGraphModel><root>
	  <mxCell id="0"/>
	  <mxCell id="1" parent="0"/>
	  <mxCell id="h" vertex="1" parent="1" visible="0">
	    <mxGeometry x="500" y="500" width="10" height="10" as="geometry"/>
	  </mxCell>
	  <mxCell id="s" style="visible=0;" vertex="1" parent="1">
	    <mxGeometry x="-500" y="0" width="10" height="10" as="geometry"/>
	  </mxCell>
	  <mxCell id="v" vertex="1" parent="1">
	    <mxGeometry x="0" y="0" width="10" height="10" as="geometry"/>
	  </mxCell>
	</root></mxGraphModel>`)

	if n := len(s.Elements()); n != 1 {
		t.Fatalf("got %d elements, want 1", n)
	}
	if got := s.Bounds(); got != (Rect{0, 0, 10, 10}) {
		t.Errorf("Bounds = %+v", got)
	}
}

func TestBasicRenderEdgePoints(t *testing.T) {
	s := render(t, `<mxGraphModel><root>
	  <mxCell id="0"/>
	  <mxCell id="1" parent="0"/>
	  <mxCell id="e" style="endArrow=none;dashed=1;" edge="1" parent="1">
	    <mxGeometry relative="1" as="geometry">
	      <mxPoint x="0" y="0" as="sourcePoint"/>
	      <mxPoint x="100" y="100" as="targetPoint"/>
	      <Array as="points"><mxPoint x="100" y="0"/></Array>
	    </mxGeometry>
	  </mxCell>
	  <mxCell id="dangling" edge="1" parent="1" source="nowhere">
	    <mxGeometry relative="1" as="geometry"/>
	  </mxCell>
	</root></mxGraphModel>`)

	if n := len(s.Elements()); n != 1 {
		t.Fatalf("got %d elements, want 1", n)
	}
	l := s.Elements()[0].(*Line)
	want := []Point{{0, 0}, {100, 0}, {100, 100}}
	if len(l.Points) != len(want) {
		t.Fatalf("points = %v", l.Points)
	}
	for i := range want {
		if l.Points[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, l.Points[i], want[i])
		}
	}
	if l.EndArrow || !l.Dashed {
		t.Errorf("line = %+v", l)
	}
}

func TestBasicRenderEmptyModel(t *testing.T) {
	s := render(t, `<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/></root></mxGraphModel>`)
	if len(s.Elements()) != 0 || !s.Bounds().Empty() {
		t.Errorf("empty model rendered %d elements, bounds %+v", len(s.Elements()), s.Bounds())
	}
}

func TestRendererFunc(t *testing.T) {
	want := New(&Box{Rect: Rect{0, 0, 1, 1}})
	var r Renderer = RendererFunc(func(*model.Model) (*Scene, error) { return want, nil })
	got, err := r.Render(nil)
	if err != nil || got != want {
		t.Errorf("RendererFunc.Render = %v, %v", got, err)
	}
}

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}
