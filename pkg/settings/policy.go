package settings

import (
	"image/color"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Presentation is the on-screen background state applied to live views.
type Presentation struct {
	Mode  Background
	Color color.NRGBA // used when Mode is BackgroundCustom
}

// Fill resolves the background color. ok is false when views should show
// no background at all.
func (p Presentation) Fill() (color.NRGBA, bool) {
	return Resolve(p.Mode, p.Color)
}

// DefaultPresentation is the state a Policy starts in.
func DefaultPresentation() Presentation {
	return Presentation{Mode: BackgroundDefault, Color: White}
}

// Observer receives the new presentation after every change.
type Observer func(Presentation)

type observer struct {
	id uuid.UUID
	fn Observer
}

// Policy is the live background state shared by all views of a session.
//
// Set notifies every registered observer synchronously, in registration
// order, before returning. Observers must not call Set.
type Policy struct {
	setMu sync.Mutex // serializes Set so observers see changes in order

	mu        sync.RWMutex
	current   Presentation
	observers []observer
}

// NewPolicy returns a policy in the default (white) state.
func NewPolicy() *Policy {
	return &Policy{current: DefaultPresentation()}
}

// Current returns the current presentation.
func (p *Policy) Current() Presentation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Register adds an observer and returns its subscription id.
func (p *Policy) Register(fn Observer) uuid.UUID {
	id := uuid.New()
	p.mu.Lock()
	p.observers = append(p.observers, observer{id: id, fn: fn})
	p.mu.Unlock()
	return id
}

// Unregister removes an observer. Unknown ids are ignored.
func (p *Policy) Unregister(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = slices.DeleteFunc(p.observers, func(o observer) bool { return o.id == id })
}

// Len returns the number of registered observers.
func (p *Policy) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.observers)
}

// Set replaces the presentation and notifies observers.
func (p *Policy) Set(next Presentation) {
	p.setMu.Lock()
	defer p.setMu.Unlock()

	p.mu.Lock()
	p.current = next
	targets := slices.Clone(p.observers)
	p.mu.Unlock()

	for _, o := range targets {
		o.fn(next)
	}
}
