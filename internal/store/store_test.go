package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_GetMissThenSetThenGetHit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4096, 1024)

	_, ok, err := m.Get(ctx, 0)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := m.Set(ctx, 0, payload); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := m.Get(ctx, 0)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != string(payload) {
		t.Fatal("round-tripped payload mismatch")
	}
}

func TestMemory_SetWrongSizeFails(t *testing.T) {
	m := NewMemory(4096, 1024)
	err := m.Set(context.Background(), 0, make([]byte, 512))
	if !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
}

func TestMemory_SetOutOfRangeFails(t *testing.T) {
	m := NewMemory(4096, 1024)
	err := m.Set(context.Background(), 4, make([]byte, 1024))
	if !errors.Is(err, ErrPageIndexOutOfRange) {
		t.Fatalf("expected ErrPageIndexOutOfRange, got %v", err)
	}
}

func TestNull_AlwaysMisses(t *testing.T) {
	n := NewNull(4096, 1024)
	_, ok, err := n.Get(context.Background(), 2)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}
