package pagemap

import "testing"

func TestHeader_MarshalRoundTrip(t *testing.T) {
	h := Header{PageID: 0xCAFEBABE, Occupied: true, Dirty: true}
	buf := make([]byte, HeaderSize)
	MarshalHeader(h, buf)
	h2 := UnmarshalHeader(buf)
	if h2 != h {
		t.Fatalf("header roundtrip mismatch: %+v vs %+v", h, h2)
	}
}

func TestHeader_ZeroValueMeansFreeSlot(t *testing.T) {
	buf := make([]byte, HeaderSize)
	h := UnmarshalHeader(buf)
	if h.Occupied || h.Dirty || h.PageID != 0 {
		t.Fatalf("expected zero header to be free, got %+v", h)
	}
}

func TestHeader_FlagsIndependent(t *testing.T) {
	cases := []Header{
		{PageID: 1, Occupied: false, Dirty: false},
		{PageID: 1, Occupied: true, Dirty: false},
		{PageID: 1, Occupied: false, Dirty: true},
		{PageID: 1, Occupied: true, Dirty: true},
	}
	for _, h := range cases {
		buf := make([]byte, HeaderSize)
		MarshalHeader(h, buf)
		if got := UnmarshalHeader(buf); got != h {
			t.Errorf("case %+v: got %+v", h, got)
		}
	}
}
