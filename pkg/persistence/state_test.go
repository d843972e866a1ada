package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStateStore(t *testing.T) {
	t.Run("SaveAndLoadEmpty", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStateStore(filepath.Join(dir, "state.json"))

		if err := store.Save(&RuntimeState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Version != StateVersion {
			t.Errorf("Version = %d, want %d", got.Version, StateVersion)
		}
		if got.SavedAt.IsZero() {
			t.Error("SavedAt should be set on save")
		}
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStateStore(filepath.Join(dir, "nonexistent.json"))

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		// Should return nil (empty state) for non-existent file
		if got != nil {
			t.Errorf("Load() = %v, want nil for non-existent file", got)
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := NewStateStore(path).Load(); err == nil {
			t.Error("Load() should fail on corrupt file")
		}
	})

	t.Run("DevicesRoundTrip", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStateStore(filepath.Join(dir, "sub", "state.json"))

		state := &RuntimeState{RunID: "run-1", SavedAt: time.Now()}
		state.Put("count1", "logic/counter", map[string]any{"count": 42})
		state.Put("const1", "logic/constant", map[string]any{"value": true})

		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.RunID != "run-1" {
			t.Errorf("RunID = %q, want run-1", got.RunID)
		}

		names := got.Names()
		if len(names) != 2 || names[0] != "const1" || names[1] != "count1" {
			t.Errorf("Names() = %v, want [const1 count1]", names)
		}

		values, ok := got.Lookup("count1", "logic/counter")
		if !ok {
			t.Fatal("Lookup(count1) not found")
		}
		// JSON numbers decode as float64.
		if values["count"] != float64(42) {
			t.Errorf("count = %v (%T), want 42", values["count"], values["count"])
		}

		if _, ok := got.Lookup("count1", "logic/holder"); ok {
			t.Error("Lookup with a different class should miss")
		}
		if _, ok := got.Lookup("missing", "logic/counter"); ok {
			t.Error("Lookup of unknown device should miss")
		}
	})

	t.Run("NilStateLookup", func(t *testing.T) {
		var state *RuntimeState
		if _, ok := state.Lookup("x", "y"); ok {
			t.Error("Lookup on nil state should miss")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")
		store := NewStateStore(path)

		if err := store.Save(&RuntimeState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("state file should be removed")
		}

		// Clearing twice is fine.
		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
	})
}
