package record

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/ptrpack/internal/format"
)

// ParseAddr parses a hexadecimal address. It accepts an optional 0x prefix
// and an optional address-space prefix such as "ram:".
func ParseAddr(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, fmt.Errorf("empty address")
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", s, err)
	}
	if v > 0xFFFF_FFFF {
		return 0, fmt.Errorf("address %q: %w", s, format.ErrAddressRange)
	}
	return uint32(v), nil
}

// FormatAddr renders an address the way emitted file names and tables show it.
func FormatAddr(v uint32) string {
	return "0x" + strconv.FormatUint(uint64(v), 16)
}

// ParseHexBytes decodes a hex string of source bytes. Whitespace is ignored.
func ParseHexBytes(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse source bytes: %w", err)
	}
	return b, nil
}
