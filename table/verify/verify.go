package verify

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/ptrpack/internal/buf"
	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/table/emit"
	"github.com/joshuapare/ptrpack/table/record"
	"github.com/joshuapare/ptrpack/table/segment"
)

// ValidationError describes one failed check.
type ValidationError struct {
	Type    string
	Message string
	Address int64
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Address >= 0 {
		return fmt.Sprintf("%s at 0x%X: %s", e.Type, e.Address, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Options selects the placement rules Artifacts checks against.
type Options struct {
	// CanonicalDuplicates expects every duplicate to point at its
	// canonical record, matching alloc.Options.CanonicalDuplicates.
	CanonicalDuplicates bool
}

// AllInvariants runs Layout and Artifacts. Returns the first error encountered.
func AllInvariants(set *record.Set, layout *segment.Layout, arts []emit.Artifact, opts Options) error {
	if err := Layout(set, layout); err != nil {
		return err
	}
	return Artifacts(set, layout, arts, opts)
}

// Layout validates the discovered block table against the records.
func Layout(set *record.Set, layout *segment.Layout) error {
	blocks := layout.Discovered()
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Start < blocks[i-1].End {
			return &ValidationError{
				Type:    "Layout",
				Message: fmt.Sprintf("%s overlaps %s", blocks[i], blocks[i-1]),
				Address: int64(blocks[i].Start),
			}
		}
	}
	for i := range set.Records {
		r := set.At(i)
		if r.Dup {
			continue
		}
		b, err := layout.Lookup(r.Block)
		if err != nil {
			return &ValidationError{Type: "Layout", Message: err.Error(), Address: int64(r.Source)}
		}
		if !b.Contains(r.Source, 0) {
			return &ValidationError{
				Type:    "Layout",
				Message: fmt.Sprintf("original string starts outside %s", b),
				Address: int64(r.Source),
				Details: map[string]interface{}{"pointer": r.Pointer},
			}
		}
	}
	return nil
}

// Spans reports the first canonical string whose original bytes run past
// the end of its block. This is advisory: a block's end comes from the
// record at its highest address, so an empty record inside a longer string
// ends the block early and the translated text gets less room than the
// original had.
func Spans(set *record.Set, layout *segment.Layout) error {
	for _, i := range set.ByAddress() {
		r := set.At(i)
		if r.Dup || r.SourceLength == 0 {
			continue
		}
		b, err := layout.Lookup(r.Block)
		if err != nil {
			return &ValidationError{Type: "Span", Message: err.Error(), Address: int64(r.Source)}
		}
		if !b.Contains(r.Source, r.SourceLength) {
			return &ValidationError{
				Type:    "Span",
				Message: fmt.Sprintf("original string of %d bytes runs past the end of %s", r.SourceLength, b),
				Address: int64(r.Source),
				Details: map[string]interface{}{"pointer": r.Pointer},
			}
		}
	}
	return nil
}

// Artifacts validates emitted binaries against the allocated records.
func Artifacts(set *record.Set, layout *segment.Layout, arts []emit.Artifact, opts Options) error {
	var table *emit.Artifact
	var blocks []emit.Artifact
	for i := range arts {
		if arts[i].Block == emit.PointerTableBlock {
			table = &arts[i]
			continue
		}
		blocks = append(blocks, arts[i])
	}
	if table == nil {
		return &ValidationError{Type: "PointerTable", Message: "pointer table artifact missing", Address: -1}
	}

	order := set.ByPointer()
	if want := len(order) * format.PointerSize; len(table.Data) != want {
		return &ValidationError{
			Type:    "PointerTable",
			Message: fmt.Sprintf("size %d, want %d", len(table.Data), want),
			Address: int64(table.Start),
		}
	}

	for _, b := range blocks {
		lb, err := layout.Lookup(b.Block)
		if err != nil {
			return &ValidationError{Type: "StringBlock", Message: err.Error(), Address: int64(b.Start)}
		}
		if !lb.Overflow && uint64(len(b.Data)) != uint64(lb.Capacity()) {
			return &ValidationError{
				Type:    "StringBlock",
				Message: fmt.Sprintf("%s size %d, want %d", lb, len(b.Data), lb.Capacity()),
				Address: int64(b.Start),
			}
		}
	}

	canonical := make(map[uint32]uint32, len(order))
	for i := range set.Records {
		if r := set.At(i); !r.Dup {
			canonical[r.Source] = r.NewAddress
		}
	}

	for n, i := range order {
		r := set.At(i)
		if want, ok := canonical[r.Source]; ok && opts.CanonicalDuplicates && r.Dup && r.NewAddress != want {
			return &ValidationError{
				Type:    "Duplicate",
				Message: fmt.Sprintf("second pointer to 0x%x placed at 0x%x, canonical at 0x%x", r.Source, r.NewAddress, want),
				Address: int64(r.Pointer),
			}
		}
		got, _ := buf.U32LEAt(table.Data, n*format.PointerSize)
		if got != r.NewAddress {
			return &ValidationError{
				Type:    "PointerTable",
				Message: fmt.Sprintf("slot holds 0x%x, record placed at 0x%x", got, r.NewAddress),
				Address: int64(r.Pointer),
			}
		}
		if r.Dup || r.ReplacementLength == 0 {
			continue
		}
		if err := checkString(blocks, r); err != nil {
			return err
		}
	}
	return nil
}

func checkString(blocks []emit.Artifact, r *record.Record) error {
	for _, b := range blocks {
		if r.NewAddress < b.Start || r.NewAddress >= b.End {
			continue
		}
		off := int(r.NewAddress - b.Start)
		got, ok := buf.Slice(b.Data, off, int(r.ReplacementLength))
		if !ok {
			return &ValidationError{
				Type:    "String",
				Message: fmt.Sprintf("%d bytes run past the end of %s", r.ReplacementLength, b.Name),
				Address: int64(r.NewAddress),
				Details: map[string]interface{}{"pointer": r.Pointer},
			}
		}
		if !bytes.Equal(got, r.ReplacementBytes) {
			return &ValidationError{
				Type:    "String",
				Message: fmt.Sprintf("bytes in %s differ from the encoded replacement", b.Name),
				Address: int64(r.NewAddress),
				Details: map[string]interface{}{"pointer": r.Pointer, "want": r.ReplacementBytes, "got": got},
			}
		}
		return nil
	}
	return &ValidationError{
		Type:    "String",
		Message: "pointer target is not inside any emitted block",
		Address: int64(r.NewAddress),
		Details: map[string]interface{}{"pointer": r.Pointer},
	}
}

// PointerSlots reports the first hole in the pointer table, where
// consecutive slots are not PointerSize apart.
func PointerSlots(set *record.Set) error {
	order := set.ByPointer()
	for n := 1; n < len(order); n++ {
		prev, cur := set.At(order[n-1]).Pointer, set.At(order[n]).Pointer
		if next, ok := buf.AddU32(prev, format.PointerSize); !ok || cur != next {
			return &ValidationError{
				Type:    "PointerSlots",
				Message: fmt.Sprintf("slot after 0x%x is 0x%x", prev, cur),
				Address: int64(cur),
			}
		}
	}
	return nil
}

// Match compares artifact bytes read back from disk with the expected ones.
func Match(want emit.Artifact, got []byte) error {
	if bytes.Equal(want.Data, got) {
		return nil
	}
	if len(want.Data) != len(got) {
		return &ValidationError{
			Type:    "Match",
			Message: fmt.Sprintf("%s is %d bytes, want %d", want.Name, len(got), len(want.Data)),
			Address: int64(want.Start),
		}
	}
	i := 0
	for i < len(got) && got[i] == want.Data[i] {
		i++
	}
	return &ValidationError{
		Type:    "Match",
		Message: fmt.Sprintf("%s differs: 0x%02x, want 0x%02x", want.Name, got[i], want.Data[i]),
		Address: int64(want.Start) + int64(i),
	}
}
