// Package buf contains bounds-checked helpers for address arithmetic and
// little-endian decoding of emitted artifacts.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U32LEAt reads the little-endian uint32 at off, reporting false when it
// does not fit in b.
func U32LEAt(b []byte, off int) (uint32, bool) {
	s, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(s), true
}
