package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStore_PutGet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	path, err := store.Put(ctx, "t1/diary/e1/r1.jpg", data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	got, err := store.Get(ctx, "t1/diary/e1/r1.jpg")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %v, want %v", got, data)
	}
}

func TestLocalStore_Overwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	if _, err := store.Put(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := store.Put(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "two" {
		t.Errorf("Get() = %q, want %q", got, "two")
	}
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "blobs"))
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	// Cleaned keys stay inside the root; the escape attempt lands on
	// blobs/escape, not the parent directory.
	if _, err := store.Put(ctx, "../escape", []byte("x")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape")); !os.IsNotExist(err) {
		t.Error("key escaped the blob root")
	}
	if _, err := os.Stat(filepath.Join(root, "blobs", "escape")); err != nil {
		t.Errorf("cleaned key not stored under root: %v", err)
	}
}

func TestLocalStore_GetMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	if _, err := store.Get(context.Background(), "nope"); err == nil {
		t.Error("Get(missing) error = nil, want error")
	}
}

func TestNewLocalStore_EmptyRoot(t *testing.T) {
	if _, err := NewLocalStore(""); err == nil {
		t.Error("NewLocalStore(\"\") error = nil, want error")
	}
}
