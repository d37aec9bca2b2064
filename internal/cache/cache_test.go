package cache

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nblockd/pagecached/internal/store"
)

func TestCache_ColdMissZeroFillOnNullBackend(t *testing.T) {
	dir := t.TempDir()
	backend := store.NewNull(10*1024, 1024)

	c, err := Open(filepath.Join(dir, "cache.bin"), 4*1024, 1024, backend)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	page, err := c.Get(context.Background(), 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(page.Data(), make([]byte, 1024)) {
		t.Fatal("expected zero-filled payload on cold miss")
	}
	h := page.Header()
	if h.PageID != 0 || !h.Occupied || h.Dirty {
		t.Fatalf("unexpected header after cold miss: %+v", h)
	}
}

func TestCache_DirtyEvictionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	backend := store.NewMemory(10*1024, 1024)
	ctx := context.Background()

	c, err := Open(path, 5*1024, 1024, backend)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	page9, err := c.GetMut(ctx, 9)
	if err != nil {
		t.Fatalf("get page 9: %v", err)
	}
	want := bytes.Repeat([]byte{0x09}, 1024)
	copy(page9.DataMut(), want)
	page9.UpdateCRC()
	h := page9.Header()
	h.Dirty = true
	page9.SetHeader(h)

	for i := uint32(0); i <= 5; i++ {
		if _, err := c.Get(ctx, i); err != nil {
			t.Fatalf("get page %d: %v", i, err)
		}
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	c2, err := Open(path, 5*1024, 1024, backend)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()

	got, err := c2.Get(ctx, 9)
	if err != nil {
		t.Fatalf("get page 9 after reopen: %v", err)
	}
	if !bytes.Equal(got.Data(), want) {
		t.Fatal("page 9 payload not written back by eviction")
	}
	if got.Header().Dirty {
		t.Fatal("page 9 should be clean after eviction write-back")
	}
}

func TestCache_GetOutOfRangePage(t *testing.T) {
	dir := t.TempDir()
	backend := store.NewMemory(4*1024, 1024)
	c, err := Open(filepath.Join(dir, "cache.bin"), 4*1024, 1024, backend)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if _, err := c.Get(context.Background(), 4); err == nil {
		t.Fatal("expected error for out-of-range page")
	}
}

func TestCache_EvictOnEmptyCacheSucceeds(t *testing.T) {
	dir := t.TempDir()
	backend := store.NewMemory(4*1024, 1024)
	c, err := Open(filepath.Join(dir, "cache.bin"), 4*1024, 1024, backend)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if err := c.Evict(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("evict on empty cache: %v", err)
	}
}

func TestCache_BackendPageSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	backend := store.NewMemory(4*1024, 512)
	_, err := Open(filepath.Join(dir, "cache.bin"), 4*1024, 1024, backend)
	if err == nil {
		t.Fatal("expected backend page size mismatch error")
	}
}
