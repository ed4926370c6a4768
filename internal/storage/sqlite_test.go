package storage

import (
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

// TestMigrationsOrdered verifies migrations are applied in ascending numeric order.
func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(versions) == 0 {
		t.Fatal("expected at least one applied migration")
	}

	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("migrations not in ascending order: %v", versions)
			break
		}
	}
}

func TestGetItemMissing(t *testing.T) {
	s := openTestStore(t)

	v, ok, err := s.GetItem("nope")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if ok {
		t.Errorf("ok = true for missing key, value %q", v)
	}
}

func TestSetItemRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetItem("callHighlights_theme", "dark"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	v, ok, err := s.GetItem("callHighlights_theme")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !ok || v != "dark" {
		t.Errorf("GetItem = (%q, %v), want (%q, true)", v, ok, "dark")
	}
}

// TestSetItemOverwrites verifies that a second write replaces the value whole.
func TestSetItemOverwrites(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetItem("k", `[{"id":1}]`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := s.SetItem("k", `[]`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	v, _, err := s.GetItem("k")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if v != "[]" {
		t.Errorf("value = %q, want %q", v, "[]")
	}
}

func TestRemoveItem(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetItem("k", "v"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := s.RemoveItem("k"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, ok, _ := s.GetItem("k"); ok {
		t.Error("key still present after RemoveItem")
	}
	if err := s.RemoveItem("k"); err != nil {
		t.Errorf("RemoveItem on missing key: %v", err)
	}
}

// TestPersistsAcrossOpen verifies values survive reopening the same data dir.
func TestPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s1.SetItem("k", "persisted"); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	v, ok, err := s2.GetItem("k")
	if err != nil || !ok || v != "persisted" {
		t.Errorf("GetItem after reopen = (%q, %v, %v)", v, ok, err)
	}
}

func TestKeys(t *testing.T) {
	s := openTestStore(t)

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys on empty store = %v", keys)
	}

	for _, k := range []string{"callHighlights_transcripts", "callHighlights_theme", "a"} {
		if err := s.SetItem(k, "v"); err != nil {
			t.Fatalf("SetItem(%q): %v", k, err)
		}
	}
	if err := s.RemoveItem("a"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}

	keys, err = s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"callHighlights_theme", "callHighlights_transcripts"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("Keys = %v, want %v", keys, want)
	}
}
