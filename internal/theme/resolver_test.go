package theme

import (
	"context"
	"errors"
	"testing"

	"pillbox/internal/prefs"
)

func TestResolvePure(t *testing.T) {
	cases := []struct {
		mode   Mode
		system Appearance
		want   Appearance
	}{
		{ModeAutomatic, Light, Light},
		{ModeAutomatic, Dark, Dark},
		{ModeLight, Dark, Light},
		{ModeDark, Light, Dark},
	}
	for _, tc := range cases {
		if got := Resolve(tc.mode, tc.system); got != tc.want {
			t.Fatalf("Resolve(%s, %s) = %s, want %s", tc.mode, tc.system, got, tc.want)
		}
	}
}

func TestParseModeNormalizesUnknownValues(t *testing.T) {
	for _, raw := range []string{"", "system", "DARK", "blue", "0"} {
		if got := ParseMode(raw); got != ModeAutomatic {
			t.Fatalf("ParseMode(%q) = %s, want automatic", raw, got)
		}
	}
	if got := ParseMode("dark"); got != ModeDark {
		t.Fatalf("ParseMode(dark) = %s", got)
	}
}

func TestInitDefaultsToAutomatic(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemStore()
	store.Seed(PrefKey, "garbage-value")

	r := NewResolver(store, NewStaticSource(Dark), nil)
	if err := r.Init(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer r.Close()

	if r.Mode() != ModeAutomatic {
		t.Fatalf("expected automatic for out-of-enum persisted value, got %s", r.Mode())
	}
	if !r.IsDark() {
		t.Fatalf("automatic mode with dark system should resolve dark")
	}
}

func TestInitSwallowsStoreReadFailure(t *testing.T) {
	store := prefs.NewMemStore()
	store.GetErr = errors.New("store unreachable")

	r := NewResolver(store, NewStaticSource(Light), nil)
	if err := r.Init(context.Background()); err != nil {
		t.Fatalf("init should not fail on store read error: %v", err)
	}
	defer r.Close()

	if r.Mode() != ModeAutomatic {
		t.Fatalf("expected automatic fallback, got %s", r.Mode())
	}
}

func TestToggleFromAutomaticFlipsResolvedAppearance(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(prefs.NewMemStore(), NewStaticSource(Dark), nil)
	if err := r.Init(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer r.Close()

	// automatic + resolved dark -> light, not a hardcoded default.
	if err := r.Toggle(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if r.Mode() != ModeLight {
		t.Fatalf("expected light after toggling automatic-dark, got %s", r.Mode())
	}
	if r.IsDark() {
		t.Fatalf("expected light appearance after toggle")
	}

	// Forced modes flip between the two.
	if err := r.Toggle(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if r.Mode() != ModeDark {
		t.Fatalf("expected dark after toggling light, got %s", r.Mode())
	}
}

func TestSetModeRoundTripAcrossRestart(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemStore()

	r := NewResolver(store, NewStaticSource(Light), nil)
	if err := r.Init(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := r.SetMode(ctx, ModeDark); err != nil {
		t.Fatalf("set mode failed: %v", err)
	}
	r.Close()

	// Fresh instance over the same store simulates a process restart.
	r2 := NewResolver(store, NewStaticSource(Light), nil)
	if err := r2.Init(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer r2.Close()

	if r2.Mode() != ModeDark {
		t.Fatalf("expected persisted dark mode, got %s", r2.Mode())
	}
	if !r2.IsDark() {
		t.Fatalf("dark mode should resolve dark regardless of system light")
	}
}

func TestSetModeSwallowsWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemStore()
	store.SetErr = errors.New("disk full")

	r := NewResolver(store, NewStaticSource(Light), nil)
	if err := r.Init(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer r.Close()

	if err := r.SetMode(ctx, ModeDark); err != nil {
		t.Fatalf("set mode must not surface the write failure: %v", err)
	}
	if r.Mode() != ModeDark {
		t.Fatalf("in-memory mode should update despite failed write")
	}
	if !r.IsDark() {
		t.Fatalf("appearance should follow the in-memory mode")
	}
}

func TestSignalOnlyAffectsAutomaticMode(t *testing.T) {
	ctx := context.Background()
	source := NewStaticSource(Light)

	r := NewResolver(prefs.NewMemStore(), source, nil)
	if err := r.Init(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer r.Close()

	var events []Appearance
	cancel := r.OnChange(func(a Appearance) { events = append(events, a) })
	defer cancel()

	// Automatic: signal flows through.
	source.Emit(Dark)
	if !r.IsDark() {
		t.Fatalf("automatic mode should follow the signal")
	}

	// Forced light: signal recorded but invisible.
	if err := r.SetMode(ctx, ModeLight); err != nil {
		t.Fatalf("set mode failed: %v", err)
	}
	source.Emit(Dark)
	if r.IsDark() {
		t.Fatalf("forced light must ignore dark signal")
	}

	// Back to automatic: the recorded signal takes effect.
	if err := r.SetMode(ctx, ModeAutomatic); err != nil {
		t.Fatalf("set mode failed: %v", err)
	}
	if !r.IsDark() {
		t.Fatalf("automatic should resolve against the latest recorded signal")
	}

	want := []Appearance{Dark, Light, Dark}
	if len(events) != len(want) {
		t.Fatalf("expected %d change events, got %d (%v)", len(want), len(events), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestCloseReleasesSubscription(t *testing.T) {
	source := NewStaticSource(Light)
	r := NewResolver(prefs.NewMemStore(), source, nil)
	if err := r.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if source.ListenerCount() != 1 {
		t.Fatalf("expected one live subscription, got %d", source.ListenerCount())
	}
	r.Close()
	r.Close() // idempotent
	if source.ListenerCount() != 0 {
		t.Fatalf("expected subscription released on close, got %d", source.ListenerCount())
	}
}
