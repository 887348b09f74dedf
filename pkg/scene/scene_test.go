package scene

import (
	"math"
	"testing"
)

func TestRectUnion(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{20, -5, 5, 5}
	got := a.Union(b)
	want := Rect{0, -5, 25, 15}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
	if e := a.Expand(10); e != (Rect{-10, -10, 30, 30}) {
		t.Errorf("Expand = %+v", e)
	}
}

func TestSceneBounds(t *testing.T) {
	s := New(
		&Box{Rect: Rect{10, 20, 100, 50}},
		&Line{Points: []Point{{0, 100}, {200, 100}, {200, 0}}},
	)
	want := Rect{0, 0, 200, 100}
	if got := s.Bounds(); got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}

	if got := New().Bounds(); got != (Rect{}) {
		t.Errorf("empty scene Bounds = %+v", got)
	}
}

func TestFitScale(t *testing.T) {
	s := New(&Box{Rect: Rect{0, 0, 200, 100}})
	tests := []struct {
		w, h, want float64
	}{
		{400, 400, 2},
		{100, 400, 0.5},
		{400, 50, 0.5},
		{0, 100, 0},
	}
	for _, tt := range tests {
		if got := s.FitScale(tt.w, tt.h); got != tt.want {
			t.Errorf("FitScale(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
	if got := New().FitScale(100, 100); got != 0 {
		t.Errorf("empty FitScale = %v", got)
	}
}

func TestTextBounds(t *testing.T) {
	txt := &Text{Rect: Rect{0, 0, 100, 40}, Lines: []string{"abcd", "ab"}, Size: 10}
	w, h := txt.Extent()
	if math.Abs(w-22) > 1e-9 || math.Abs(h-24) > 1e-9 {
		t.Fatalf("Extent = %v, %v", w, h)
	}
	b := txt.Bounds()
	if math.Abs(b.X-39) > 1e-9 || math.Abs(b.Y-8) > 1e-9 {
		t.Errorf("centered Bounds = %+v", b)
	}

	txt.HAlign, txt.VAlign = AlignLeft, AlignTop
	if b := txt.Bounds(); b.X != 0 || b.Y != 0 {
		t.Errorf("top-left Bounds = %+v", b)
	}
	txt.HAlign, txt.VAlign = AlignRight, AlignBottom
	if b := txt.Bounds(); math.Abs(b.MaxX()-100) > 1e-9 || math.Abs(b.MaxY()-40) > 1e-9 {
		t.Errorf("bottom-right Bounds = %+v", b)
	}
}

func TestArrowHead(t *testing.T) {
	head := ArrowHead(Point{0, 0}, Point{10, 0}, 4)
	if head[0] != (Point{10, 0}) {
		t.Errorf("tip = %+v", head[0])
	}
	if head[1] != (Point{6, 2}) || head[2] != (Point{6, -2}) {
		t.Errorf("base = %+v %+v", head[1], head[2])
	}
	if d := ArrowHead(Point{1, 1}, Point{1, 1}, 4); d[1] != (Point{1, 1}) {
		t.Errorf("degenerate head = %+v", d)
	}
}
