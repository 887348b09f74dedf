package config

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawview/pkg/watch"
)

// Event reports a reload of the configuration file. On failure Err is set
// and Config holds the last good configuration.
type Event struct {
	Config  Config
	Changed []string
	Err     error
}

// Reloadable reports whether every changed section can be applied live.
func (e Event) Reloadable() bool {
	for _, s := range e.Changed {
		if !slices.Contains(ReloadableSections, s) {
			return false
		}
	}
	return true
}

// Watcher re-reads the configuration file whenever it changes and publishes
// an [Event] to its subscribers. Reloads that change nothing are not
// published.
type Watcher struct {
	path   string
	fw     *watch.Watcher
	logger *log.Logger

	mu      sync.Mutex
	current Config
	subs    []subscriber
	nextID  int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewWatcher watches path, treating initial as the configuration currently
// in effect.
func NewWatcher(path string, initial Config, logger *log.Logger, opts ...watch.Option) (*Watcher, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	fw, err := watch.New(path, append([]watch.Option{watch.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Watcher{path: path, fw: fw, logger: logger, current: initial}, nil
}

// Subscribe registers fn and returns a function that removes it.
// Subscribers run on the Run goroutine in subscription order.
func (w *Watcher) Subscribe(fn func(Event)) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	w.subs = append(w.subs, subscriber{id: id, fn: fn})
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.subs = slices.DeleteFunc(w.subs, func(s subscriber) bool { return s.id == id })
	}
}

// Current returns the configuration in effect.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run processes file changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	return w.fw.Run(ctx, func(watch.Event) { w.Reload() })
}

// Reload re-reads the file and publishes the outcome.
func (w *Watcher) Reload() {
	next, err := Load(w.path)

	w.mu.Lock()
	old := w.current
	var ev Event
	switch {
	case err != nil:
		ev = Event{Config: old, Err: err}
	default:
		ev = Event{Config: next, Changed: changedSections(old, next)}
		w.current = next
	}
	subs := slices.Clone(w.subs)
	w.mu.Unlock()

	if ev.Err == nil && len(ev.Changed) == 0 {
		return
	}
	if ev.Err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "err", ev.Err)
	} else {
		w.logger.Info("config reloaded", "path", w.path, "changed", ev.Changed)
		if !ev.Reloadable() {
			w.logger.Warn("some config changes require a restart", "changed", ev.Changed)
		}
	}
	for _, s := range subs {
		s.fn(ev)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
