package settings

import (
	"image/color"
	"testing"
)

func TestPolicyDefault(t *testing.T) {
	p := NewPolicy()
	fill, ok := p.Current().Fill()
	if !ok || fill != White {
		t.Errorf("default fill = %v, %v; want white", fill, ok)
	}
}

func TestPolicyFanOut(t *testing.T) {
	p := NewPolicy()

	var order []string
	var last Presentation
	a := p.Register(func(pr Presentation) { order = append(order, "a"); last = pr })
	p.Register(func(Presentation) { order = append(order, "b") })
	p.Register(func(Presentation) { order = append(order, "c") })

	next := Presentation{Mode: BackgroundCustom, Color: color.NRGBA{0x11, 0x22, 0x33, 0xff}}
	p.Set(next)

	if got := len(order); got != 3 {
		t.Fatalf("notified %d observers, want 3", got)
	}
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("notification order = %v", order)
	}
	if last != next {
		t.Errorf("observer saw %+v, want %+v", last, next)
	}
	if p.Current() != next {
		t.Errorf("Current() = %+v", p.Current())
	}

	p.Unregister(a)
	order = nil
	p.Set(DefaultPresentation())
	if len(order) != 2 || order[0] != "b" {
		t.Errorf("after Unregister order = %v", order)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
}

func TestPolicyObserverMayUnregister(t *testing.T) {
	p := NewPolicy()
	calls := 0
	var id = p.Register(func(Presentation) {
		calls++
	})
	p.Register(func(Presentation) { p.Unregister(id) })

	p.Set(Presentation{Mode: BackgroundBlack})
	p.Set(Presentation{Mode: BackgroundWhite})
	if calls != 1 {
		t.Errorf("unregistered observer called %d times, want 1", calls)
	}
}

func TestPolicyIndependentOfExport(t *testing.T) {
	p := NewPolicy()
	s := NewStore(DefaultExportSettings())

	p.Set(Presentation{Mode: BackgroundBlack})
	if got := s.Load().Background; got != BackgroundDefault {
		t.Errorf("export background changed to %v", got)
	}
}
