package onboarding

import (
	"context"

	"pillbox/internal/prefs"
)

// PrefKey is the preference-store key for the seen marker. The outer
// navigation reads it once at startup to decide whether to show this flow
// at all.
const PrefKey = "has_seen_onboarding"

// Marker records whether onboarding has ever been completed or skipped.
type Marker struct {
	store prefs.Store
}

// NewMarker creates a Marker over the given store.
func NewMarker(store prefs.Store) *Marker {
	return &Marker{store: store}
}

// MarkAsSeen records that onboarding finished.
func (m *Marker) MarkAsSeen(ctx context.Context) error {
	return m.store.Set(ctx, PrefKey, "true")
}

// Reset clears the marker so the flow shows again on next launch.
func (m *Marker) Reset(ctx context.Context) error {
	return m.store.Delete(ctx, PrefKey)
}

// HasSeen reports whether the marker is set. Read failures count as unseen;
// showing onboarding twice is cheaper than never showing it.
func (m *Marker) HasSeen(ctx context.Context) bool {
	v, err := m.store.Get(ctx, PrefKey)
	return err == nil && v == "true"
}
