package boltstore

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestBoltStore_SetGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "store.bolt"), 10*1024, 1024)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	payload := bytes.Repeat([]byte{0x3}, 1024)
	if err := s.Set(ctx, 3, payload); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := s.Get(ctx, 3)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round-tripped payload mismatch")
	}
}

func TestBoltStore_GetMissingKeyMisses(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "store.bolt"), 10*1024, 1024)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Get(context.Background(), 1)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.bolt")
	payload := bytes.Repeat([]byte{0x7}, 1024)

	s, err := Open(path, 10*1024, 1024)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(context.Background(), 0, payload); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path, 10*1024, 1024)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, ok, err := s2.Get(context.Background(), 0)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload lost across reopen")
	}
}
