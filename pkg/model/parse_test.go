package model

import (
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/drawview/pkg/codec"
	errs "github.com/matzehuels/drawview/pkg/errors"
)

const basic = `<mxGraphModel dx="800" dy="600" grid="1" background="#fafafa">
  <root>
    <mxCell id="0"/>
    <mxCell id="1" parent="0"/>
    <mxCell id="a" value="Start" style="rounded=1;fillColor=#dae8fc;" vertex="1" parent="1" data-x="kept">
      <mxGeometry x="40" y="20" width="120" height="60" as="geometry"/>
    </mxCell>
    <mxCell id="b" value="End" style="ellipse;" vertex="1" parent="1">
      <mxGeometry x="240" y="20" width="80" height="80" as="geometry"/>
    </mxCell>
    <mxCell id="e" style="endArrow=classic;" edge="1" parent="1" source="a" target="b">
      <mxGeometry relative="1" as="geometry">
        <mxPoint x="160" y="50" as="sourcePoint"/>
        <mxPoint x="240" y="60" as="targetPoint"/>
        <Array as="points">
          <mxPoint x="200" y="50"/>
          <mxPoint x="200" y="60"/>
        </Array>
      </mxGeometry>
    </mxCell>
  </root>
</mxGraphModel>`

func TestParseBasic(t *testing.T) {
	m, err := Parse(basic)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if m.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", m.Len())
	}
	if m.Root().ID != "0" {
		t.Errorf("Root().ID = %q, want 0", m.Root().ID)
	}
	if bg, _ := m.Attr("background"); bg != "#fafafa" {
		t.Errorf("background attr = %q", bg)
	}

	a, ok := m.Cell("a")
	if !ok {
		t.Fatal("cell a missing")
	}
	if !a.Vertex || a.Value != "Start" || a.Style != "rounded=1;fillColor=#dae8fc;" {
		t.Errorf("cell a = %+v", a)
	}
	if v, _ := a.Attr("data-x"); v != "kept" {
		t.Errorf("unrecognized attribute not preserved: %v", a.Attrs)
	}
	if a.Geometry == nil || a.Geometry.X != 40 || a.Geometry.Width != 120 {
		t.Errorf("cell a geometry = %+v", a.Geometry)
	}

	e, _ := m.Cell("e")
	if !e.Edge || e.Source != "a" || e.Target != "b" {
		t.Errorf("cell e = %+v", e)
	}
	g := e.Geometry
	if g == nil || !g.Relative || g.SourcePoint == nil || g.TargetPoint == nil {
		t.Fatalf("edge geometry = %+v", g)
	}
	if len(g.Points) != 2 || g.Points[1] != (Point{200, 60}) {
		t.Errorf("waypoints = %v", g.Points)
	}

	var ids []string
	for _, c := range m.ChildCells("1") {
		ids = append(ids, c.ID)
	}
	if strings.Join(ids, ",") != "a,b,e" {
		t.Errorf("children of layer = %v, want document order", ids)
	}
}

func TestParseWrapped(t *testing.T) {
	payload, err := codec.Encode(basic)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tests := map[string]string{
		"nested":     `<mxfile host="x"><diagram name="P" id="1">` + basic + `</diagram></mxfile>`,
		"compressed": `<mxfile host="x"><diagram name="P" id="1">` + payload + `</diagram></mxfile>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := Parse(doc)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if m.Len() != 5 {
				t.Errorf("Len() = %d, want 5", m.Len())
			}
		})
	}
}

func TestParseObjectWrapper(t *testing.T) {
	doc := `<mxGraphModel><root>
	  <mxCell id="0"/>
	  <mxCell id="1" parent="0"/>
	  <UserObject label="Server &lt;b&gt;A&lt;/b&gt;" owner="ops" id="srv">
	    <mxCell style="shape=cylinder;" vertex="1" parent="1">
	      <mxGeometry width="40" height="60" as="geometry"/>
	    </mxCell>
	  </UserObject>
	  <object label="Note" id="n"><mxCell vertex="1" parent="1"/></object>
	</root></mxGraphModel>`

	m, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, ok := m.Cell("srv")
	if !ok {
		t.Fatal("wrapped cell missing")
	}
	if c.Value != "Server <b>A</b>" || c.Parent != "1" || !c.Vertex {
		t.Errorf("cell = %+v", c)
	}
	if v, _ := c.Attr("owner"); v != "ops" {
		t.Errorf("owner attr = %q", v)
	}
	if _, ok := m.Cell("n"); !ok {
		t.Error("object cell missing")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errs.Code
	}{
		{"malformed", `<mxGraphModel><root>`, errs.ErrCodeParseInvalidXML},
		{"not xml", `hello`, errs.ErrCodeParseInvalidXML},
		{"unterminated trailing element", `<mxGraphModel><root><mxCell id="0"/></root></mxGraphModel><b`, errs.ErrCodeParseInvalidXML},
		{"stray end tag", `<mxGraphModel><root><mxCell id="0"/></root></mxGraphModel></c>`, errs.ErrCodeParseInvalidXML},
		{"trailing text", `<mxGraphModel><root><mxCell id="0"/></root></mxGraphModel>garbage`, errs.ErrCodeParseInvalidXML},
		{"foreign root", `<svg/>`, errs.ErrCodeParseNotADiagram},
		{"mxfile without diagram", `<mxfile host="x"></mxfile>`, errs.ErrCodeParseNotADiagram},
		{"empty page", `<mxfile><diagram/></mxfile>`, errs.ErrCodeParseNotADiagram},
		{"bad payload", `<mxfile><diagram>%%%</diagram></mxfile>`, errs.ErrCodeDecodeMalformed},
		{"binary payload", `<mxfile><diagram>Z//+AA==</diagram></mxfile>`, errs.ErrCodeParseInvalidXML},
		{"no root element", `<mxGraphModel/>`, errs.ErrCodeParseCorruptModel},
		{"no cells", `<mxGraphModel><root/></mxGraphModel>`, errs.ErrCodeParseCorruptModel},
		{"missing id", `<mxGraphModel><root><mxCell/></root></mxGraphModel>`, errs.ErrCodeParseCorruptModel},
		{"duplicate id", `<mxGraphModel><root><mxCell id="0"/><mxCell id="0"/></root></mxGraphModel>`, errs.ErrCodeParseCorruptModel},
		{"two roots", `<mxGraphModel><root><mxCell id="0"/><mxCell id="x"/></root></mxGraphModel>`, errs.ErrCodeParseCorruptModel},
		{"dangling parent", `<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="9"/></root></mxGraphModel>`, errs.ErrCodeParseCorruptModel},
		{"bad number", `<mxGraphModel><root><mxCell id="0"><mxGeometry x="abc" as="geometry"/></mxCell></root></mxGraphModel>`, errs.ErrCodeParseCorruptModel},
		{"infinite", `<mxGraphModel><root><mxCell id="0"><mxGeometry width="Inf" as="geometry"/></mxCell></root></mxGraphModel>`, errs.ErrCodeParseCorruptModel},
		{"NaN waypoint", `<mxGraphModel><root><mxCell id="0"><mxGeometry as="geometry"><Array as="points"><mxPoint x="NaN"/></Array></mxGeometry></mxCell></root></mxGraphModel>`, errs.ErrCodeParseCorruptModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.doc)
			if err == nil {
				t.Fatalf("Parse succeeded with %d cells", m.Len())
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseNotADiagramMessage(t *testing.T) {
	_, err := Parse(`<mxfile></mxfile>`)
	if got := errs.UserMessage(err); got != codec.MsgMissingModel {
		t.Errorf("UserMessage = %q, want %q", got, codec.MsgMissingModel)
	}
}

func TestParseRejectsCycles(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"two-cell loop", `<mxGraphModel><root>
			<mxCell id="0"/>
			<mxCell id="A" parent="B"/>
			<mxCell id="B" parent="A"/>
		</root></mxGraphModel>`},
		{"self parent", `<mxGraphModel><root>
			<mxCell id="0"/>
			<mxCell id="A" parent="A"/>
		</root></mxGraphModel>`},
		{"loop below a chain", `<mxGraphModel><root>
			<mxCell id="0"/>
			<mxCell id="1" parent="0"/>
			<mxCell id="x" parent="y"/>
			<mxCell id="y" parent="z"/>
			<mxCell id="z" parent="x"/>
			<mxCell id="w" parent="x"/>
		</root></mxGraphModel>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc)
			if !errs.Is(err, errs.ErrCodeParseCorruptModel) {
				t.Fatalf("error = %v, want %s", err, errs.ErrCodeParseCorruptModel)
			}
			if !strings.Contains(err.Error(), "cycle") {
				t.Errorf("error %q does not mention the cycle", err)
			}
		})
	}
}

func TestParseLargeChain(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<mxGraphModel><root><mxCell id="c0"/>`)
	const n = 5000
	for i := 1; i < n; i++ {
		b.WriteString(`<mxCell id="c` + strconv.Itoa(i) + `" parent="c` + strconv.Itoa(i-1) + `"/>`)
	}
	b.WriteString(`</root></mxGraphModel>`)

	m, err := Parse(b.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := m.Stats().Depth; got != n-1 {
		t.Errorf("Depth = %d, want %d", got, n-1)
	}
}
