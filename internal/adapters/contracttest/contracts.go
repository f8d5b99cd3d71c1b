package contracttest

import (
	"context"
	"errors"
	"testing"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

type CleanupFunc = func()

// CredentialStoreOpener opens a store for key over one shared backend.
// Opening the same key twice must observe the same slot, the way a restarted
// process would.
type CredentialStoreOpener func(key domain.StorageKey) credentialstore.Store

type CredentialStoreFactory func(t *testing.T) (CredentialStoreOpener, CleanupFunc)

func RunCredentialStore(t *testing.T, newBackend CredentialStoreFactory) {
	t.Helper()
	ctx := context.Background()

	open, cleanup := newBackend(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	store := open(domain.DefaultStorageKey)

	// Nothing stored yet: absence, not an error.
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("Load on empty store: ok=%v err=%v", ok, err)
	}

	// Clear on an empty store is fine.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}

	if err := store.Save(ctx, ""); !errors.Is(err, credentialstore.ErrEmptyCredential) {
		t.Fatalf("Save(\"\"): expected ErrEmptyCredential, got %v", err)
	}

	if err := store.Save(ctx, "tok-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok || got != "tok-1" {
		t.Fatalf("Load after Save: got=%q ok=%v err=%v", got, ok, err)
	}

	// Overwrite semantics.
	if err := store.Save(ctx, "tok-2"); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	got, ok, err = store.Load(ctx)
	if err != nil || !ok || got != "tok-2" {
		t.Fatalf("Load after overwrite: got=%q ok=%v err=%v", got, ok, err)
	}

	// Survives a "restart": a fresh handle on the same key sees the value.
	reopened := open(domain.DefaultStorageKey)
	got, ok, err = reopened.Load(ctx)
	if err != nil || !ok || got != "tok-2" {
		t.Fatalf("Load after reopen: got=%q ok=%v err=%v", got, ok, err)
	}

	// Keys are independent slots.
	other := open(domain.StorageKey("other-slot"))
	if _, ok, err := other.Load(ctx); err != nil || ok {
		t.Fatalf("Load on other key: ok=%v err=%v", ok, err)
	}
	if err := other.Save(ctx, "tok-other"); err != nil {
		t.Fatalf("Save other key: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, err := reopened.Load(ctx); err != nil || ok {
		t.Fatalf("Load after Clear: ok=%v err=%v", ok, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}

	got, ok, err = other.Load(ctx)
	if err != nil || !ok || got != "tok-other" {
		t.Fatalf("Clear leaked into other key: got=%q ok=%v err=%v", got, ok, err)
	}
}
