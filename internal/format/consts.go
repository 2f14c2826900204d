// Package format holds the byte-level constants and helpers shared by every
// stage of the string table repacker: word size, terminator and padding
// bytes, the control-code bias, and the sentinel capacity of the overflow
// block. Keeping them here lets the stages agree on layout without importing
// each other.
package format

const (
	// WordSize is the alignment every stored string is padded to, and the
	// width of one pointer-table slot.
	WordSize = 4

	// PointerSize is the width of one pointer-table entry in bytes.
	PointerSize = WordSize

	// SourceCharSize is the width of one character in the original string
	// data. Source content is always a whole number of characters.
	SourceCharSize = 2

	// SourceTerminatorSize is the number of terminator bytes that follow
	// every original string.
	SourceTerminatorSize = 2

	// Terminator ends every stored replacement string.
	Terminator byte = 0x00

	// PadByte is appended to a replacement string whose encoded length is
	// odd, before the terminator.
	PadByte byte = ' '

	// ControlCodeBias is subtracted from an uppercase letter to form the
	// in-band auto-capitalize code that replaces the preceding space.
	ControlCodeBias byte = 0x40

	// MaxEncodable is the highest byte value a replacement character may
	// encode to.
	MaxEncodable = 0x7F
)

const (
	// SentinelCapacity is the nominal size of the synthetic overflow block.
	// It is far larger than any table the console image can hold; running
	// past it is a configuration error.
	SentinelCapacity uint32 = 0x0100_0000

	// DefaultOverflowBase is where the synthetic overflow block starts
	// unless configured otherwise.
	DefaultOverflowBase uint32 = 0
)

// BinExt is the extension given to every emitted artifact.
const BinExt = ".bin"
