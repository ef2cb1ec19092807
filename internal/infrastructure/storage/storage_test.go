package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

// both backends must satisfy the port.
var (
	_ ports.StorageBackend = (*Memory)(nil)
	_ ports.StorageBackend = (*File)(nil)
)

func testBackendRoundTrip(t *testing.T, b ports.StorageBackend) {
	t.Helper()
	ctx := context.Background()

	// Absent key: found=false, no error.
	_, found, err := b.Get(ctx, "pharmarun:users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected found=false for absent key")
	}

	if err := b.Set(ctx, "pharmarun:users", []byte(`[{"id":"u1"}]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, found, err := b.Get(ctx, "pharmarun:users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || !bytes.Equal(got, []byte(`[{"id":"u1"}]`)) {
		t.Fatalf("round trip failed: found=%v value=%s", found, got)
	}

	// Overwrite fully replaces.
	if err := b.Set(ctx, "pharmarun:users", []byte(`[]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, _, _ = b.Get(ctx, "pharmarun:users")
	if !bytes.Equal(got, []byte(`[]`)) {
		t.Fatalf("overwrite failed: %s", got)
	}

	if err := b.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	testBackendRoundTrip(t, NewMemory())
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.Set(ctx, "k", []byte("original"))
	got, _, _ := m.Get(ctx, "k")
	got[0] = 'X'

	again, _, _ := m.Get(ctx, "k")
	if !bytes.Equal(again, []byte("original")) {
		t.Fatalf("stored value mutated through returned slice: %s", again)
	}
}

func TestFile_RoundTrip(t *testing.T) {
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testBackendRoundTrip(t, f)
}

func TestFile_KeyEscaping(t *testing.T) {
	dir := t.TempDir()
	f, _ := NewFile(dir)
	ctx := context.Background()

	if err := f.Set(ctx, "pharmarun:orders", []byte("[]")); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// The colon must not produce a path separator or an unescaped name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".json" {
		t.Errorf("expected .json file, got %s", entries[0].Name())
	}
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, _ := NewFile(dir)
	if err := first.Set(ctx, "pharmarun:products", []byte(`[{"id":"p1"}]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	second, _ := NewFile(dir)
	got, found, err := second.Get(ctx, "pharmarun:products")
	if err != nil || !found {
		t.Fatalf("expected value to survive reopen: found=%v err=%v", found, err)
	}
	if !bytes.Equal(got, []byte(`[{"id":"p1"}]`)) {
		t.Fatalf("wrong value after reopen: %s", got)
	}
}
