package kv

import (
	"context"
	"errors"
	"testing"
)

func newTestBadger(t *testing.T) *Badger {
	t.Helper()
	store, err := NewBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerStore(t *testing.T) {
	store := newTestBadger(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}

	if err := store.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	value, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if string(value) != "1" {
		t.Errorf("value = %q, want 1", value)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get deleted = %v, want ErrNotFound", err)
	}
}

func TestBadgerList(t *testing.T) {
	store := newTestBadger(t)
	ctx := context.Background()

	for _, key := range []string{"p/1", "p/2", "q/3"} {
		if err := store.Set(ctx, key, []byte(key)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.List(ctx, "p/")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Key != "p/1" || entries[1].Key != "p/2" {
		t.Errorf("entries = %v, %v", entries[0].Key, entries[1].Key)
	}
}

func TestBadgerPersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewBadger(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBadger(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	value, err := reopened.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(value) != "v" {
		t.Errorf("value = %q, want v", value)
	}
}
