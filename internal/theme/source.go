package theme

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// Source exposes the current system appearance and change notifications.
// Implementations must normalize "unknown" to Light before returning; the
// resolver never sees a missing appearance.
type Source interface {
	// Current returns the present system appearance.
	Current() Appearance

	// Subscribe registers cb to be called on every appearance change. The
	// returned cancel function releases the subscription; it must be safe to
	// call more than once.
	Subscribe(cb func(Appearance)) (cancel func())
}

// StaticSource is a Source with a fixed value and manual event injection.
// Tests drive appearance changes through Emit.
type StaticSource struct {
	mu        sync.Mutex
	current   Appearance
	listeners map[int]func(Appearance)
	nextID    int
}

// NewStaticSource creates a StaticSource reporting the given appearance.
func NewStaticSource(a Appearance) *StaticSource {
	return &StaticSource{
		current:   a,
		listeners: make(map[int]func(Appearance)),
	}
}

// Current returns the last emitted appearance.
func (s *StaticSource) Current() Appearance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a change listener.
func (s *StaticSource) Subscribe(cb func(Appearance)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = cb
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Emit updates the current appearance and notifies subscribers.
func (s *StaticSource) Emit(a Appearance) {
	s.mu.Lock()
	s.current = a
	cbs := make([]func(Appearance), 0, len(s.listeners))
	for _, cb := range s.listeners {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(a)
	}
}

// ListenerCount reports the number of live subscriptions. Used by tests to
// verify the resolver releases its subscription on Close.
func (s *StaticSource) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// TermSource detects the terminal appearance once at startup. Terminals do
// not signal appearance changes, so Subscribe never fires.
type TermSource struct{}

// Current inspects COLORFGBG and the PILLBOX_DARK_MODE override. When
// neither gives an answer the appearance is unknown and falls back to light.
func (TermSource) Current() Appearance {
	// COLORFGBG is "foreground;background", with konsole adding a middle
	// segment; the background is always the last one. ANSI background
	// indexes 0-6 and 8 (dark grey) indicate a dark terminal.
	if v := os.Getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		if len(parts) >= 2 {
			if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
				if (bg >= 0 && bg <= 6) || bg == 8 {
					return Dark
				}
				return Light
			}
		}
	}

	if os.Getenv("PILLBOX_DARK_MODE") == "1" {
		return Dark
	}

	return Light
}

// Subscribe is a no-op for terminals; the cancel function does nothing.
func (TermSource) Subscribe(func(Appearance)) func() {
	return func() {}
}
