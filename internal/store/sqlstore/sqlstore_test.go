package sqlstore

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestSQLStore_SetGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "store.sqlite"), 10*1024, 1024)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	payload := []byte("hello world page payload padded to a full page of data......")
	padded := make([]byte, 1024)
	copy(padded, payload)

	if err := s.Set(ctx, 9, padded); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := s.Get(ctx, 9)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, padded) {
		t.Fatal("round-tripped payload mismatch")
	}
}

func TestSQLStore_GetMissingRowMisses(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "store.sqlite"), 10*1024, 1024)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Get(context.Background(), 5)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}
