package format

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAlign4(t *testing.T) {
	cases := map[int]int{0: 0, 1: 4, 3: 4, 4: 4, 5: 8, 8: 8, 13: 16}
	for in, want := range cases {
		if got := Align4(in); got != want {
			t.Fatalf("Align4(%d) = %d, want %d", in, got, want)
		}
		if !IsAligned(Align4(in)) {
			t.Fatalf("Align4(%d) not aligned", in)
		}
	}
	if IsAligned(6) {
		t.Fatalf("6 should not be word aligned")
	}
}

func TestU32RoundTrip(t *testing.T) {
	b := make([]byte, 8)
	PutU32(b, 4, 0x80012345)
	if b[4] != 0x45 || b[7] != 0x80 {
		t.Fatalf("PutU32 wrote % x, want little-endian", b[4:])
	}
	if got := ReadU32(b, 4); got != 0x80012345 {
		t.Fatalf("ReadU32 = 0x%x", got)
	}
	out := AppendU32(nil, 0x1000)
	if len(out) != 4 || out[0] != 0x00 || out[1] != 0x10 {
		t.Fatalf("AppendU32 = % x", out)
	}
}

func TestRecordError(t *testing.T) {
	err := fmt.Errorf("build: %w", &RecordError{
		Stage:   "alloc",
		Pointer: 0x80010000,
		Source:  0x80020010,
		Err:     ErrPackingOverflow,
	})
	if !errors.Is(err, ErrPackingOverflow) {
		t.Fatalf("errors.Is should see the sentinel through RecordError")
	}
	var rerr *RecordError
	if !errors.As(err, &rerr) || rerr.Source != 0x80020010 {
		t.Fatalf("errors.As failed: %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"ptr=0x80010000", "src=0x80020010", "packing overflow"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}
