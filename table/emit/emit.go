// Package emit serializes an allocated record set into the artifacts the
// image build step consumes: one pointer table and one string-data file per
// destination block.
package emit

import (
	"fmt"
	"strconv"

	"github.com/joshuapare/ptrpack/internal/buf"
	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/table/record"
	"github.com/joshuapare/ptrpack/table/segment"
)

// PointerTableBlock is the Block value of the pointer-table artifact.
const PointerTableBlock = -1

// Artifact is one emitted binary covering [Start, End) in the image.
type Artifact struct {
	Name  string
	Start uint32
	End   uint32
	// Block is the destination block id, or PointerTableBlock.
	Block int
	Data  []byte
}

// Size returns len(Data).
func (a Artifact) Size() int { return len(a.Data) }

// FileName formats the artifact file name for table covering [start, end).
func FileName(table string, start, end uint32) string {
	return table + "_0x" + strconv.FormatUint(uint64(start), 16) +
		"_0x" + strconv.FormatUint(uint64(end), 16) + format.BinExt
}

// PointerTable emits one little-endian NewAddress per record, in ascending
// pointer-slot order.
func PointerTable(set *record.Set) (Artifact, error) {
	order := set.ByPointer()
	if len(order) == 0 {
		return Artifact{}, format.ErrEmptyTable
	}

	data := make([]byte, 0, len(order)*format.PointerSize)
	for n, i := range order {
		r := set.At(i)
		if n > 0 && set.At(order[n-1]).Pointer == r.Pointer {
			return Artifact{}, &format.RecordError{Stage: "emit", Pointer: r.Pointer, Source: r.Source, Err: format.ErrDuplicatePointer}
		}
		data = format.AppendU32(data, r.NewAddress)
	}

	first := set.At(order[0])
	last := set.At(order[len(order)-1])
	end, ok := buf.AddU32(last.Pointer, format.PointerSize)
	if !ok {
		return Artifact{}, &format.RecordError{Stage: "emit", Pointer: last.Pointer, Source: last.Source, Err: format.ErrAddressRange}
	}
	return Artifact{
		Name:  FileName(set.Name, first.Pointer, end),
		Start: first.Pointer,
		End:   end,
		Block: PointerTableBlock,
		Data:  data,
	}, nil
}

// StringBlocks emits the packed replacement bytes of every destination
// block. Discovered blocks are zero-filled to their full capacity, even when
// nothing was placed in them. The overflow block is emitted only when it
// holds content, sized to that content.
func StringBlocks(set *record.Set, layout *segment.Layout) ([]Artifact, error) {
	for i := range set.Records {
		r := set.At(i)
		if _, err := layout.Lookup(r.NewBlock); err != nil {
			return nil, &format.RecordError{Stage: "emit", Pointer: r.Pointer, Source: r.Source, Err: err}
		}
	}

	out := make([]Artifact, 0, len(layout.Blocks))
	for _, b := range layout.Blocks {
		a, err := packBlock(set, b)
		if err != nil {
			return nil, err
		}
		if b.Overflow && len(a.Data) == 0 {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func packBlock(set *record.Set, b segment.Block) (Artifact, error) {
	capacity := b.Capacity()
	var data []byte
	if !b.Overflow {
		data = make([]byte, 0, capacity)
	}

	for _, i := range set.InBlock(b.ID) {
		r := set.At(i)
		if r.ReplacementLength == 0 {
			continue
		}
		at, err := buf.CheckRange(b.Start, len(data))
		if err != nil || at != r.NewAddress {
			return Artifact{}, &format.RecordError{Stage: "emit", Pointer: r.Pointer, Source: r.Source,
				Err: fmt.Errorf("%w: assigned 0x%x, packed at 0x%x", format.ErrLayoutMismatch, r.NewAddress, at)}
		}
		if uint64(len(data))+uint64(r.ReplacementLength) > uint64(capacity) {
			return Artifact{}, &format.RecordError{Stage: "emit", Pointer: r.Pointer, Source: r.Source,
				Err: fmt.Errorf("%w: %s", format.ErrOverCapacity, b)}
		}
		if len(r.ReplacementBytes) != int(r.ReplacementLength) {
			return Artifact{}, &format.RecordError{Stage: "emit", Pointer: r.Pointer, Source: r.Source,
				Err: fmt.Errorf("%w: %d encoded bytes, length %d", format.ErrLayoutMismatch, len(r.ReplacementBytes), r.ReplacementLength)}
		}
		data = append(data, r.ReplacementBytes...)
	}

	end := b.End
	if b.Overflow {
		var err error
		if end, err = buf.CheckRange(b.Start, len(data)); err != nil {
			return Artifact{}, fmt.Errorf("emit: %s: %w", b, err)
		}
	} else {
		data = append(data, make([]byte, int(capacity)-len(data))...)
	}

	return Artifact{
		Name:  FileName(set.Name, b.Start, end),
		Start: b.Start,
		End:   end,
		Block: b.ID,
		Data:  data,
	}, nil
}

// All emits the pointer table followed by every string block.
func All(set *record.Set, layout *segment.Layout) ([]Artifact, error) {
	pt, err := PointerTable(set)
	if err != nil {
		return nil, err
	}
	blocks, err := StringBlocks(set, layout)
	if err != nil {
		return nil, err
	}
	return append([]Artifact{pt}, blocks...), nil
}
