package kvstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if _, ok := store.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}

	if err := store.Set("configs", `{"cached_at":"now"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok := store.Get("configs")
	if !ok || value != `{"cached_at":"now"}` {
		t.Errorf("get after set: ok=%v value=%q", ok, value)
	}

	// Set replaces wholesale
	if err := store.Set("configs", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if value, _ := store.Get("configs"); value != "v2" {
		t.Errorf("overwrite not visible, got %q", value)
	}
}

func TestStoreRemove(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := store.Get("k"); ok {
		t.Error("value survived removal")
	}

	// Removing an absent key is fine
	if err := store.Remove("k"); err != nil {
		t.Errorf("idempotent remove failed: %v", err)
	}
}
