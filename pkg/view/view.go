// Package view keeps a live, on-screen representation of one document.
//
// A [View] reloads its document whenever asked, typically from a file
// watcher. Loads run asynchronously and may finish out of order; each load
// captures a generation number when it starts and its result is applied only
// if no newer load has started since and the view is still open. Stale
// results are dropped without notifying anyone.
//
// Views also follow the session's [settings.Policy]: they register on
// construction, re-apply the presentation on every change, and unregister
// on Close.
package view

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/drawview/pkg/errors"
	pkgio "github.com/matzehuels/drawview/pkg/io"
	"github.com/matzehuels/drawview/pkg/pipeline"
	"github.com/matzehuels/drawview/pkg/settings"
)

// Source supplies the current bytes of a document.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context) ([]byte, error)

// Read calls f(ctx).
func (f SourceFunc) Read(ctx context.Context) ([]byte, error) { return f(ctx) }

// File reads a document from disk.
type File string

// Read reads the file.
func (f File) Read(ctx context.Context) ([]byte, error) {
	return pkgio.ReadDocument(string(f))
}

// State is what a view currently shows.
type State struct {
	// Generation is the load that produced this state; 0 before the first
	// load completes.
	Generation uint64

	// Result holds the decoded model and rendered scene. It is nil when
	// the last load failed.
	Result *pipeline.Result

	// Err is the failure of the last applied load.
	Err error

	// Troubleshooting lists guidance for load failures.
	Troubleshooting []string

	Presentation settings.Presentation
}

// Ready reports whether the state holds a diagram.
func (s State) Ready() bool { return s.Err == nil && s.Result != nil }

// Listener is called after every applied load and presentation change.
type Listener func(State)

// Options configures a View.
type Options struct {
	Runner   *pipeline.Runner
	Policy   *settings.Policy
	Logger   *log.Logger
	OnUpdate Listener
}

// View is a live document view. All methods are safe for concurrent use.
type View struct {
	id       uuid.UUID
	source   Source
	runner   *pipeline.Runner
	policy   *settings.Policy
	logger   *log.Logger
	listener Listener
	sub      uuid.UUID

	generation atomic.Uint64
	inflight   sync.WaitGroup

	notifyMu sync.Mutex // orders listener calls
	mu       sync.Mutex
	state    State
	closed   bool
}

// New creates a view of src and registers it with the policy. It does not
// load anything; call Reload.
func New(src Source, opts Options) *View {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Policy == nil {
		opts.Policy = settings.NewPolicy()
	}

	v := &View{
		id:       uuid.New(),
		source:   src,
		runner:   opts.Runner,
		policy:   opts.Policy,
		listener: opts.OnUpdate,
	}
	v.logger = opts.Logger.With("view", v.id.String()[:8])
	v.state.Presentation = v.policy.Current()
	v.sub = v.policy.Register(v.present)
	return v
}

// ID identifies the view in logs.
func (v *View) ID() uuid.UUID { return v.id }

// State returns what the view currently shows.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Reload starts a new load and returns its generation. Any load still in
// flight is superseded: its result will be discarded.
func (v *View) Reload(ctx context.Context) uint64 {
	gen := v.generation.Add(1)
	v.inflight.Add(1)
	go func() {
		defer v.inflight.Done()
		res, err := v.load(ctx)
		v.apply(gen, res, err)
	}()
	v.logger.Debug("load started", "generation", gen)
	return gen
}

// Wait blocks until every started load has finished, applied or not.
func (v *View) Wait() {
	v.inflight.Wait()
}

// Close unregisters the view from the policy. Loads still in flight finish
// but are not applied. Close is idempotent.
func (v *View) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.mu.Unlock()

	v.policy.Unregister(v.sub)
	v.logger.Debug("view closed")
	return nil
}

func (v *View) load(ctx context.Context) (*pipeline.Result, error) {
	raw, err := v.source.Read(ctx)
	if err != nil {
		return nil, err
	}
	return v.runner.LoadScene(ctx, raw, pipeline.Options{Logger: v.logger})
}

func (v *View) apply(gen uint64, res *pipeline.Result, err error) {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		v.logger.Debug("discarded load for closed view", "generation", gen)
		return
	}
	if current := v.generation.Load(); gen != current {
		v.mu.Unlock()
		v.logger.Debug("discarded stale load", "generation", gen, "current", current)
		return
	}

	next := State{Generation: gen, Presentation: v.state.Presentation}
	if err != nil {
		next.Err = err
		if errs.IsLoadError(err) {
			next.Troubleshooting = errs.Troubleshooting()
		}
	} else {
		next.Result = res
	}
	v.state = next
	v.mu.Unlock()

	if err != nil {
		v.logger.Warn("load failed", "generation", gen, "err", errs.UserMessage(err))
	} else {
		v.logger.Debug("load applied", "generation", gen, "cells", res.Stats.Model.Cells)
	}
	v.notify(next)
}

// present is the policy observer.
func (v *View) present(p settings.Presentation) {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.state.Presentation = p
	st := v.state
	v.mu.Unlock()

	v.notify(st)
}

func (v *View) notify(st State) {
	if v.listener != nil {
		v.listener(st)
	}
}
