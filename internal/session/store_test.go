package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get("missing"); ok {
		t.Fatalf("expected missing key")
	}

	store.Set(KeyToken, "tok", time.Minute)
	v, ok := store.Get(KeyToken)
	if !ok || v != "tok" {
		t.Fatalf("expected token, got %q,%v", v, ok)
	}

	store.Delete(KeyToken)
	if _, ok := store.Get(KeyToken); ok {
		t.Fatalf("expected deleted key")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeyToken, "tok", 40*time.Millisecond)
	store.Set(KeyRefreshToken, "ref", 0) // sin TTL no expira

	time.Sleep(60 * time.Millisecond)
	if _, ok := store.Get(KeyToken); ok {
		t.Fatalf("expected token expired")
	}
	if v, ok := store.Get(KeyRefreshToken); !ok || v != "ref" {
		t.Fatalf("expected refresh kept, got %q,%v", v, ok)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeyUser, "u", time.Minute)
	store.Set(KeyToken, "t", time.Minute)
	store.Clear()
	if _, ok := store.Get(KeyUser); ok {
		t.Fatalf("expected cleared store")
	}
	if _, ok := store.Get(KeyToken); ok {
		t.Fatalf("expected cleared store")
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store.Set(KeyToken, "tok", time.Hour)
	store.Set(KeyRefreshToken, "ref", RefreshTTL)

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if v, ok := reopened.Get(KeyToken); !ok || v != "tok" {
		t.Fatalf("expected token to survive reopen, got %q,%v", v, ok)
	}
	if v, ok := reopened.Get(KeyRefreshToken); !ok || v != "ref" {
		t.Fatalf("expected refresh to survive reopen, got %q,%v", v, ok)
	}
}

func TestFileStore_ExpiredEntriesDropOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store.Set(KeyToken, "tok", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if _, ok := reopened.Get(KeyToken); ok {
		t.Fatalf("expected expired entry gone after reopen")
	}
}

func TestFileStore_CorruptFileIsEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open corrupt store: %v", err)
	}
	if _, ok := store.Get(KeyToken); ok {
		t.Fatalf("expected empty session from corrupt file")
	}

	store.Set(KeyToken, "tok", time.Minute)
	if v, ok := store.Get(KeyToken); !ok || v != "tok" {
		t.Fatalf("store should be writable after recovery, got %q,%v", v, ok)
	}
}

func TestFileStore_ClearRemovesEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store.Set(KeyUser, "u", time.Hour)
	store.Set(KeyCompanies, "[]", time.Hour)
	store.Clear()

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if _, ok := reopened.Get(KeyUser); ok {
		t.Fatalf("expected cleared store after reopen")
	}
}
