package format

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding indicates replacement text holds a character the target
	// encoding cannot represent.
	ErrEncoding = errors.New("format: character not encodable")
	// ErrOddSourceLength indicates source content with an odd byte count,
	// which breaks the word-alignment rule for original strings.
	ErrOddSourceLength = errors.New("format: odd source byte count")
	// ErrPackingOverflow indicates a replacement string does not fit the
	// block it was moved into, or the overflow block is exhausted.
	ErrPackingOverflow = errors.New("format: packing overflow")
	// ErrMissingBlock indicates a record refers to a block id absent from the layout.
	ErrMissingBlock = errors.New("format: missing block")
	// ErrOverCapacity indicates packed content larger than its block at emission time.
	ErrOverCapacity = errors.New("format: block over capacity")
	// ErrEmptyTable indicates a record set with no records.
	ErrEmptyTable = errors.New("format: empty table")
	// ErrDuplicatePointer indicates two records claim the same pointer slot.
	ErrDuplicatePointer = errors.New("format: duplicate pointer slot")
	// ErrLayoutMismatch indicates a record's assigned address disagrees with
	// where its bytes land in the packed block.
	ErrLayoutMismatch = errors.New("format: layout mismatch")
	// ErrAddressRange indicates an address that does not fit in 32 bits.
	ErrAddressRange = errors.New("format: address out of range")
)

// RecordError ties a failure to the record that caused it. Pointer and
// Source are the record's original pointer-slot and string addresses.
type RecordError struct {
	Stage   string
	Pointer uint32
	Source  uint32
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: record ptr=0x%x src=0x%x: %v", e.Stage, e.Pointer, e.Source, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
