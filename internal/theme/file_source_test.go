package theme

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestFileSourceCurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appearance")

	s := NewFileSource(path, nil)
	defer s.Close()

	// Missing file is unknown -> light.
	if got := s.Current(); got != Light {
		t.Fatalf("missing file should read light, got %s", got)
	}

	if err := os.WriteFile(path, []byte("dark\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := s.Current(); got != Dark {
		t.Fatalf("expected dark, got %s", got)
	}

	// Unknown contents normalize to light, never propagate.
	if err := os.WriteFile(path, []byte("dusk"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := s.Current(); got != Light {
		t.Fatalf("unknown contents should read light, got %s", got)
	}
}

func TestFileSourceDeliversChangeEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "appearance")
	if err := os.WriteFile(path, []byte("light"), 0644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	s := NewFileSource(path, nil)

	events := make(chan Appearance, 8)
	cancel := s.Subscribe(func(a Appearance) { events <- a })

	if err := os.WriteFile(path, []byte("dark"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case a := <-events:
		if a != Dark {
			t.Fatalf("expected dark event, got %s", a)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for appearance event")
	}

	cancel()
	cancel() // safe to call twice
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestFileSourceCloseWithoutSubscribe(t *testing.T) {
	s := NewFileSource(filepath.Join(t.TempDir(), "appearance"), nil)
	if err := s.Close(); err != nil {
		t.Fatalf("close on unused source failed: %v", err)
	}
}
