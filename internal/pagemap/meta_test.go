package pagemap

import (
	"errors"
	"testing"
)

func TestMeta_RoundTrip(t *testing.T) {
	m := newMeta(4096, 40960)
	buf := make([]byte, MetaSize)
	m.write(buf)

	m2, err := load(buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m2 != m {
		t.Fatalf("meta roundtrip mismatch: %+v vs %+v", m, m2)
	}
	if err := m2.validateAgainst(4096, 40960); err != nil {
		t.Fatalf("validateAgainst: %v", err)
	}
}

func TestMeta_BadMagic(t *testing.T) {
	buf := make([]byte, MetaSize)
	newMeta(4096, 40960).write(buf)
	buf[0] ^= 0xFF
	_, err := load(buf)
	if !errors.Is(err, ErrInvalidMetaMagic) {
		t.Fatalf("expected ErrInvalidMetaMagic, got %v", err)
	}
}

func TestMeta_TooSmall(t *testing.T) {
	_, err := load(make([]byte, MetaSize-1))
	if !errors.Is(err, ErrInvalidMetaSize) {
		t.Fatalf("expected ErrInvalidMetaSize, got %v", err)
	}
}

func TestMeta_ValidateAgainstMismatches(t *testing.T) {
	m := newMeta(4096, 40960)

	if err := m.validateAgainst(8192, 40960); !errors.Is(err, ErrInvalidMetaPageSize) {
		t.Errorf("page size mismatch: got %v", err)
	}
	if err := m.validateAgainst(4096, 81920); !errors.Is(err, ErrInvalidMetaDataSize) {
		t.Errorf("data size mismatch: got %v", err)
	}

	bad := m
	bad.Version = 99
	if err := bad.validateAgainst(4096, 40960); !errors.Is(err, ErrInvalidMetaVersion) {
		t.Errorf("version mismatch: got %v", err)
	}
}
