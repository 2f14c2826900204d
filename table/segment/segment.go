// Package segment discovers the contiguous byte ranges ("blocks") the
// original strings occupy, and derives the block layout the allocator packs
// replacement text into.
//
// Records are walked in ascending Source order. A record starting further
// past the previous canonical record than that record's length opens a new
// block. Duplicates join the current block but never move the cursor.
//
// The layout ends with a synthetic overflow block of SentinelCapacity bytes
// that absorbs whatever the discovered blocks cannot hold.
package segment

import (
	"fmt"

	"github.com/joshuapare/ptrpack/internal/buf"
	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/table/record"
)

// Block is a contiguous [Start, End) byte interval.
type Block struct {
	ID       int
	Start    uint32
	End      uint32
	Overflow bool
}

// Capacity returns the block's size in bytes.
func (b Block) Capacity() uint32 {
	return b.End - b.Start
}

// Contains reports whether [addr, addr+n) lies inside the block.
func (b Block) Contains(addr, n uint32) bool {
	end, ok := buf.AddU32(addr, n)
	return ok && addr >= b.Start && end <= b.End
}

func (b Block) String() string {
	kind := "block"
	if b.Overflow {
		kind = "overflow"
	}
	return fmt.Sprintf("%s %d [0x%x, 0x%x)", kind, b.ID, b.Start, b.End)
}

// Layout is the ordered block table. Blocks[i].ID == i, and the last entry
// is always the overflow block.
type Layout struct {
	Blocks []Block
}

// Lookup returns the block with the given id.
func (l *Layout) Lookup(id int) (Block, error) {
	if id < 0 || id >= len(l.Blocks) {
		return Block{}, fmt.Errorf("%w: id %d (have %d)", format.ErrMissingBlock, id, len(l.Blocks))
	}
	return l.Blocks[id], nil
}

// Discovered returns the blocks found in the original image, without the
// overflow block.
func (l *Layout) Discovered() []Block {
	if len(l.Blocks) == 0 {
		return nil
	}
	return l.Blocks[:len(l.Blocks)-1]
}

// Overflow returns the synthetic overflow block.
func (l *Layout) Overflow() Block {
	return l.Blocks[len(l.Blocks)-1]
}

// Options configures segmentation.
type Options struct {
	// OverflowBase is the start address of the synthetic overflow block.
	OverflowBase uint32
}

// Segment assigns Block to every record and returns the block layout. order
// must list every record index ascending by Source, as record.Set.ByAddress
// returns. Source lengths must already be computed.
func Segment(set *record.Set, order []int, opts Options) (*Layout, error) {
	if set.Len() == 0 || len(order) == 0 {
		return nil, format.ErrEmptyTable
	}
	if len(order) != set.Len() {
		return nil, fmt.Errorf("segment: order covers %d of %d records", len(order), set.Len())
	}

	first := set.At(order[0])
	prevAddr, prevLen := first.Source, first.SourceLength
	current := 0

	for _, i := range order {
		r := set.At(i)
		if r.Source < prevAddr {
			return nil, fmt.Errorf("segment: records not in address order at 0x%x", r.Source)
		}
		if r.Source-prevAddr > prevLen {
			current++
		}
		r.Block = current
		if r.SourceLength != 0 {
			prevAddr, prevLen = r.Source, r.SourceLength
		}
	}

	blocks := make([]Block, current+1, current+2)
	last := make([]uint32, current+1)
	seen := make([]bool, current+1)
	for _, i := range order {
		r := set.At(i)
		id := r.Block
		if !seen[id] {
			seen[id] = true
			blocks[id] = Block{ID: id, Start: r.Source}
		} else if r.Source <= last[id] {
			// End comes from the first record at the block's highest address.
			continue
		}
		end, ok := buf.AddU32(r.Source, r.SourceLength)
		if !ok {
			return nil, &format.RecordError{Stage: "segment", Pointer: r.Pointer, Source: r.Source, Err: format.ErrAddressRange}
		}
		last[id] = r.Source
		blocks[id].End = end
	}

	ovEnd, ok := buf.AddU32(opts.OverflowBase, format.SentinelCapacity)
	if !ok {
		return nil, fmt.Errorf("segment: overflow base 0x%x: %w", opts.OverflowBase, format.ErrAddressRange)
	}
	blocks = append(blocks, Block{ID: current + 1, Start: opts.OverflowBase, End: ovEnd, Overflow: true})

	return &Layout{Blocks: blocks}, nil
}
