package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got, ok := U32LEAt(data, 4); !ok || got != 0xefcdab89 {
		t.Fatalf("U32LEAt(4) = 0x%x,%v", got, ok)
	}
	if _, ok := U32LEAt(data, 5); ok {
		t.Fatalf("U32LEAt past the end should fail")
	}

	short := []byte{0xAA}
	if U32LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
}
