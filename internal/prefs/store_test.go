package prefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := NewFileStore(dir)
	if _, err := s.Get(ctx, "theme_mode"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
	if err := s.Set(ctx, "theme_mode", "dark"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// Fresh instance reads what the first one wrote.
	s2 := NewFileStore(dir)
	v, err := s2.Get(ctx, "theme_mode")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if v != "dark" {
		t.Fatalf("expected dark, got %q", v)
	}

	if err := s2.Delete(ctx, "theme_mode"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s2.Get(ctx, "theme_mode"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStoreDeleteAbsentKey(t *testing.T) {
	s := NewFileStore(t.TempDir())
	if err := s.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("delete of absent key should be a no-op, got %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preferences.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	s := NewFileStore(dir)
	if _, err := s.Get(context.Background(), "theme_mode"); err == nil {
		t.Fatalf("expected parse error for corrupt file")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(ctx, "auth"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "auth", `{"token":"t"}`); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := s.Set(ctx, "auth", `{"token":"t2"}`); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	v, err := s.Get(ctx, "auth")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if v != `{"token":"t2"}` {
		t.Fatalf("expected overwritten value, got %q", v)
	}
	if err := s.Delete(ctx, "auth"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "auth"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemStoreFaultHooks(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	s.GetErr = errors.New("store unavailable")
	if _, err := s.Get(ctx, "k"); err == nil {
		t.Fatalf("expected injected get error")
	}
	s.GetErr = nil

	s.SetErr = errors.New("disk full")
	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Fatalf("expected injected set error")
	}
	s.SetErr = nil

	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if v, _ := s.Get(ctx, "k"); v != "v" {
		t.Fatalf("expected v, got %q", v)
	}
}
