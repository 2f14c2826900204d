package buf

import (
	"fmt"
	"math"
)

// AddU32 adds a and b, returning ok = false when the result would overflow uint32.
func AddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// ToU32 narrows n to uint32, returning ok = false when n is negative or too large.
func ToU32(n int) (uint32, bool) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// CheckRange validates that [start, start+n) fits in 32-bit address space and
// returns its end.
//
//	end, err := buf.CheckRange(block.Start, len(data))
//	if err != nil {
//	    return fmt.Errorf("block: %w", err)
//	}
func CheckRange(start uint32, n int) (uint32, error) {
	size, ok := ToU32(n)
	if !ok {
		return 0, fmt.Errorf("size out of range: %d", n)
	}
	end, ok := AddU32(start, size)
	if !ok {
		return 0, fmt.Errorf("overflow: start=0x%x + size=%d", start, n)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	if n > len(b)-off {
		return nil, false
	}
	return b[off : off+n], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
