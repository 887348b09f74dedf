package model

import (
	"slices"
	"testing"
)

func mustParse(t *testing.T, doc string) *Model {
	t.Helper()
	m, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestWalkOrder(t *testing.T) {
	m := mustParse(t, `<mxGraphModel><root>
		<mxCell id="0"/>
		<mxCell id="1" parent="0"/>
		<mxCell id="g" vertex="1" parent="1"/>
		<mxCell id="g1" vertex="1" parent="g"/>
		<mxCell id="v" vertex="1" parent="1"/>
		<mxCell id="g2" vertex="1" parent="g"/>
	</root></mxGraphModel>`)

	var got []string
	var depths []int
	m.Walk(func(c *Cell, depth int) bool {
		got = append(got, c.ID)
		depths = append(depths, depth)
		return true
	})
	if want := []string{"0", "1", "g", "g1", "g2", "v"}; !slices.Equal(got, want) {
		t.Errorf("Walk order = %v, want %v", got, want)
	}
	if want := []int{0, 1, 2, 3, 3, 2}; !slices.Equal(depths, want) {
		t.Errorf("Walk depths = %v, want %v", depths, want)
	}

	got = got[:0]
	m.Walk(func(c *Cell, depth int) bool {
		got = append(got, c.ID)
		return c.ID != "g"
	})
	if want := []string{"0", "1", "g", "v"}; !slices.Equal(got, want) {
		t.Errorf("pruned Walk = %v, want %v", got, want)
	}
}

func TestAncestors(t *testing.T) {
	m := mustParse(t, `<mxGraphModel><root>
		<mxCell id="0"/>
		<mxCell id="1" parent="0"/>
		<mxCell id="2" parent="1"/>
	</root></mxGraphModel>`)

	if got := m.Ancestors("2"); !slices.Equal(got, []string{"1", "0"}) {
		t.Errorf("Ancestors(2) = %v", got)
	}
	if got := m.Ancestors("0"); len(got) != 0 {
		t.Errorf("Ancestors(root) = %v", got)
	}
}

func TestStats(t *testing.T) {
	m := mustParse(t, basic)
	got := m.Stats()
	want := Stats{Cells: 5, Vertices: 2, Edges: 1, Layers: 1, Depth: 2}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestAttrsIsCopy(t *testing.T) {
	m := mustParse(t, basic)
	a := m.Attrs()
	a["grid"] = "0"
	if v, _ := m.Attr("grid"); v != "1" {
		t.Errorf("Attrs() exposed internal map: grid = %q", v)
	}
}
