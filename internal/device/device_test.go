package device

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nblockd/pagecached/internal/cache"
	"github.com/nblockd/pagecached/internal/store"
)

func newTestDevice(t *testing.T, dataSize, pageSize uint64) *Device {
	t.Helper()
	dir := t.TempDir()
	backend := store.NewMemory(dataSize, pageSize)
	c, err := cache.Open(filepath.Join(dir, "cache.bin"), dataSize, pageSize, backend)
	if err != nil {
		t.Fatalf("cache open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return New(c)
}

func TestDevice_WriteThenReadAcrossPageBoundary(t *testing.T) {
	ctx := context.Background()
	d := newTestDevice(t, 4*1024, 1024)

	if _, err := d.Write(ctx, 512, bytes.Repeat([]byte{0x02}, 512)); err != nil {
		t.Fatalf("write 1: %v", err)
	}
	if _, err := d.Write(ctx, 1024, bytes.Repeat([]byte{0x03}, 512)); err != nil {
		t.Fatalf("write 2: %v", err)
	}

	buf := make([]byte, 1024)
	if _, err := d.Read(ctx, 512, buf); err != nil {
		t.Fatalf("read: %v", err)
	}

	if !bytes.Equal(buf[0:512], bytes.Repeat([]byte{0x02}, 512)) {
		t.Fatal("first half mismatch")
	}
	if !bytes.Equal(buf[512:1024], bytes.Repeat([]byte{0x03}, 512)) {
		t.Fatal("second half mismatch")
	}
}

func TestDevice_FlushIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := newTestDevice(t, 4*1024, 1024)

	if _, err := d.Write(ctx, 0, bytes.Repeat([]byte{0x01}, 1024)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("flush 1: %v", err)
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("flush 2: %v", err)
	}

	buf := make([]byte, 1024)
	if _, err := d.Read(ctx, 0, buf); err != nil {
		t.Fatalf("read after flush: %v", err)
	}
	if !bytes.Equal(buf, bytes.Repeat([]byte{0x01}, 1024)) {
		t.Fatal("data lost across idempotent flush")
	}
}

func TestDevice_ControlEvictRespectsIdleThreshold(t *testing.T) {
	ctx := context.Background()
	d := newTestDevice(t, 4*1024, 1024)

	if _, err := d.Write(ctx, 0, bytes.Repeat([]byte{0x01}, 1024)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Device was just touched; a long idle threshold should not trigger
	// eviction yet.
	if err := d.Control(ctx, Control{Kind: ControlEvict, Idle: time.Hour}); err != nil {
		t.Fatalf("control evict (not idle): %v", err)
	}
	if n := d.Stats.Evictions.Load(); n != 0 {
		t.Fatalf("evictions after non-idle control = %d, want 0", n)
	}

	time.Sleep(2 * time.Millisecond)
	if err := d.Control(ctx, Control{Kind: ControlEvict, Idle: time.Millisecond}); err != nil {
		t.Fatalf("control evict (idle): %v", err)
	}
	if n := d.Stats.Evictions.Load(); n != 1 {
		t.Fatalf("evictions after idle control = %d, want 1", n)
	}
}

func TestDevice_ControlShutdownIsNoop(t *testing.T) {
	d := newTestDevice(t, 4*1024, 1024)
	if err := d.Control(context.Background(), Control{Kind: ControlShutdown}); err != nil {
		t.Fatalf("control shutdown: %v", err)
	}
}

func TestDevice_ReadPastDeviceEndFails(t *testing.T) {
	ctx := context.Background()
	d := newTestDevice(t, 4*1024, 1024)
	buf := make([]byte, 1024)
	if _, err := d.Read(ctx, 4*1024, buf); err == nil {
		t.Fatal("expected error reading past device end")
	}
}
