package device

import "testing"

func TestFlushRange_CoalescesSequentialRun(t *testing.T) {
	var f FlushRange

	steps := []uint32{1, 1, 1, 2, 3}
	for _, addr := range steps {
		if _, closed := f.Append(addr); closed {
			t.Fatalf("append(%d): expected no closed range", addr)
		}
	}

	r, closed := f.Append(5)
	if !closed {
		t.Fatal("append(5): expected a closed range")
	}
	if r.Start != 1 || r.End != 4 {
		t.Fatalf("closed range = [%d,%d), want [1,4)", r.Start, r.End)
	}

	for _, addr := range []uint32{6, 7, 8} {
		if _, closed := f.Append(addr); closed {
			t.Fatalf("append(%d): expected no closed range", addr)
		}
	}

	r, closed = f.Append(9)
	if !closed {
		t.Fatal("append(9): expected a closed range at FlushLength")
	}
	if r.Start != 5 || r.End != 9 {
		t.Fatalf("closed range = [%d,%d), want [5,9)", r.Start, r.End)
	}
	if r.Len() != FlushLength {
		t.Fatalf("closed range len = %d, want %d", r.Len(), FlushLength)
	}
}

func TestFlushRange_NonContiguousClosesImmediately(t *testing.T) {
	var f FlushRange
	f.Append(10)

	r, closed := f.Append(20)
	if !closed {
		t.Fatal("expected closed range on non-contiguous append")
	}
	if r.Start != 10 || r.End != 11 {
		t.Fatalf("closed range = [%d,%d), want [10,11)", r.Start, r.End)
	}
}

func TestFlushRange_FirstAppendNeverClosesAnything(t *testing.T) {
	var f FlushRange
	if _, closed := f.Append(42); closed {
		t.Fatal("first append on a fresh FlushRange should never close a range")
	}
}
