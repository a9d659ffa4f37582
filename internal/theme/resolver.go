package theme

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"pillbox/internal/prefs"
)

// Resolver owns the theme mode and the effective appearance. Init must
// complete before any screen reads Appearance; sequencing, not locking, is
// what prevents a first paint in the wrong theme.
//
// A single Resolver is constructed at startup and torn down with Close;
// nothing else writes the mode or the resolved appearance.
type Resolver struct {
	store  prefs.Store
	source Source
	log    *zap.Logger

	mu       sync.RWMutex
	mode     Mode
	system   Appearance
	resolved Appearance
	unsub    func()

	listeners map[int]func(Appearance)
	nextID    int
}

// NewResolver creates a Resolver over the given store and appearance source.
// log may be nil.
func NewResolver(store prefs.Store, source Source, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		store:     store,
		source:    source,
		log:       log,
		mode:      ModeAutomatic,
		system:    Light,
		resolved:  Light,
		listeners: make(map[int]func(Appearance)),
	}
}

// Init loads the persisted mode, reads the current system appearance,
// computes the initial resolved appearance, and subscribes to appearance
// changes. A missing or unreadable persisted mode falls back to automatic;
// Init itself never fails on storage problems.
func (r *Resolver) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := ModeAutomatic
	raw, err := r.store.Get(ctx, PrefKey)
	switch {
	case err == nil:
		mode = ParseMode(raw)
	case errors.Is(err, prefs.ErrNotFound):
		// First run.
	default:
		r.log.Warn("theme mode read failed, using automatic", zap.Error(err))
	}

	system := r.source.Current()

	r.mu.Lock()
	r.mode = mode
	r.system = system
	r.resolved = Resolve(mode, system)
	r.unsub = r.source.Subscribe(r.onSignal)
	r.mu.Unlock()

	return nil
}

// Mode returns the current theme mode.
func (r *Resolver) Mode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// Appearance returns the effective appearance.
func (r *Resolver) Appearance() Appearance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved
}

// IsDark reports whether the effective appearance is dark.
func (r *Resolver) IsDark() bool {
	return r.Appearance() == Dark
}

// SetMode persists the mode, then updates the resolved appearance against
// the current system appearance. A failed persistence write is logged and
// swallowed: the in-memory mode still changes so the UI stays responsive
// when storage is unavailable, at the cost of losing the choice on restart.
func (r *Resolver) SetMode(ctx context.Context, mode Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.store.Set(ctx, PrefKey, string(mode)); err != nil {
		r.log.Warn("theme mode write failed, keeping in-memory value", zap.Error(err))
	}

	r.mu.Lock()
	r.mode = mode
	changed := r.recomputeLocked()
	r.mu.Unlock()

	if changed {
		r.notify()
	}
	return nil
}

// Toggle flips the theme. From automatic it switches to the opposite of the
// currently resolved appearance: toggling while automatic-and-dark lands on
// light, not on a fixed default. From light or dark it flips between the two.
func (r *Resolver) Toggle(ctx context.Context) error {
	r.mu.RLock()
	mode, resolved := r.mode, r.resolved
	r.mu.RUnlock()

	var next Mode
	switch mode {
	case ModeAutomatic:
		if resolved == Dark {
			next = ModeLight
		} else {
			next = ModeDark
		}
	case ModeLight:
		next = ModeDark
	default:
		next = ModeLight
	}

	return r.SetMode(ctx, next)
}

// OnChange registers cb for resolved-appearance changes. The returned cancel
// releases the registration.
func (r *Resolver) OnChange(cb func(Appearance)) (cancel func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = cb
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Close releases the appearance-signal subscription and drops listeners.
// Safe to call more than once.
func (r *Resolver) Close() {
	r.mu.Lock()
	unsub := r.unsub
	r.unsub = nil
	r.listeners = make(map[int]func(Appearance))
	r.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// onSignal records the new system appearance. It only has a visible effect
// while the mode is automatic; in a forced mode the value is kept so a later
// switch back to automatic resolves against the latest signal.
func (r *Resolver) onSignal(a Appearance) {
	r.mu.Lock()
	r.system = a
	changed := r.recomputeLocked()
	r.mu.Unlock()

	if changed {
		r.notify()
	}
}

// recomputeLocked re-derives the resolved appearance. Caller holds r.mu.
func (r *Resolver) recomputeLocked() bool {
	next := Resolve(r.mode, r.system)
	if next == r.resolved {
		return false
	}
	r.resolved = next
	return true
}

func (r *Resolver) notify() {
	r.mu.RLock()
	a := r.resolved
	cbs := make([]func(Appearance), 0, len(r.listeners))
	for _, cb := range r.listeners {
		cbs = append(cbs, cb)
	}
	r.mu.RUnlock()

	for _, cb := range cbs {
		cb(a)
	}
}
