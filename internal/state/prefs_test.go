// internal/state/prefs_test.go
package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrefStore(t *testing.T) {
	dir := t.TempDir()
	store := NewPrefStore(dir)

	// Unset prefs read as zero values
	if p := store.Provider(); p != "" {
		t.Errorf("expected empty provider, got %q", p)
	}
	if m := store.Model(); m != "" {
		t.Errorf("expected empty model, got %q", m)
	}

	if err := store.SetProvider("anthropic"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetModel("claude-sonnet"); err != nil {
		t.Fatal(err)
	}

	if p := store.Provider(); p != "anthropic" {
		t.Errorf("expected provider anthropic, got %q", p)
	}
	if m := store.Model(); m != "claude-sonnet" {
		t.Errorf("expected model claude-sonnet, got %q", m)
	}
}

func TestPrefStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store := NewPrefStore(dir)
	if err := store.SetProvider("openai"); err != nil {
		t.Fatal(err)
	}

	// A fresh store over the same directory sees the same values.
	reopened := NewPrefStore(dir)
	if p := reopened.Provider(); p != "openai" {
		t.Errorf("expected provider openai after reopen, got %q", p)
	}
}

func TestPrefStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "prefs.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Corrupt prefs fall back to defaults rather than failing.
	store := NewPrefStore(dir)
	if p := store.Provider(); p != "" {
		t.Errorf("expected empty provider for corrupt file, got %q", p)
	}
	if err := store.SetProvider("openai"); err != nil {
		t.Fatal(err)
	}
	if p := store.Provider(); p != "openai" {
		t.Errorf("expected provider openai, got %q", p)
	}
}
