package alloc

import (
	"fmt"

	"github.com/joshuapare/ptrpack/internal/buf"
	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/table/record"
	"github.com/joshuapare/ptrpack/table/segment"
)

// Options configures allocation.
type Options struct {
	// StrictOverflow turns any placement into the overflow block into a
	// packing overflow.
	StrictOverflow bool

	// CanonicalDuplicates places a second pointer to a string at the
	// address of the record that stores it, instead of at the cursor.
	CanonicalDuplicates bool
}

// Sequential is a bump-pointer allocator over a fixed block layout.
type Sequential struct {
	layout *segment.Layout
	strict bool

	// block is the id of the block currently being filled.
	block int
	// cursor is the address the next string will be placed at.
	cursor uint32
	// end is the current block's exclusive end.
	end uint32

	used []uint32
}

// NewSequential returns an allocator positioned at the start of block 0.
func NewSequential(layout *segment.Layout, opts Options) (*Sequential, error) {
	first, err := layout.Lookup(0)
	if err != nil {
		return nil, err
	}
	return &Sequential{
		layout: layout,
		strict: opts.StrictOverflow,
		block:  first.ID,
		cursor: first.Start,
		end:    first.End,
		used:   make([]uint32, len(layout.Blocks)),
	}, nil
}

// Alloc places n bytes and returns the address and block they landed in.
// n == 0 returns the cursor without consuming space.
func (s *Sequential) Alloc(n uint32) (uint32, int, error) {
	if n == 0 {
		return s.cursor, s.block, nil
	}

	tentative, ok := buf.AddU32(s.cursor, n)
	if !ok || tentative >= s.end {
		if err := s.advance(); err != nil {
			return 0, 0, err
		}
		tentative, ok = buf.AddU32(s.cursor, n)
		if !ok || tentative > s.end {
			b := s.layout.Blocks[s.block]
			return 0, 0, fmt.Errorf("%w: %d bytes exceed %s (capacity %d)",
				format.ErrPackingOverflow, n, b, b.Capacity())
		}
	}

	addr := s.cursor
	s.cursor = tentative
	s.used[s.block] += n
	return addr, s.block, nil
}

// advance closes the current block and moves the cursor to the next one.
func (s *Sequential) advance() error {
	next, err := s.layout.Lookup(s.block + 1)
	if err != nil {
		return fmt.Errorf("%w: overflow block exhausted at 0x%x: %w",
			format.ErrPackingOverflow, s.cursor, err)
	}
	if next.Overflow && s.strict {
		return fmt.Errorf("%w: discovered blocks full and overflow is disabled", format.ErrPackingOverflow)
	}
	s.block = next.ID
	s.cursor = next.Start
	s.end = next.End
	return nil
}

// Block returns the id of the block currently being filled.
func (s *Sequential) Block() int { return s.block }

// Cursor returns the next placement address.
func (s *Sequential) Cursor() uint32 { return s.cursor }

// Used returns bytes placed per block id.
func (s *Sequential) Used() []uint32 {
	out := make([]uint32, len(s.used))
	copy(out, s.used)
	return out
}

// Allocate assigns NewAddress and NewBlock to every record, walking order
// (ascending Source, as used for segmentation). Zero-length records,
// placeholders and duplicates alike, take the cursor. With
// CanonicalDuplicates set, duplicates take the placement of the canonical
// record at their source address instead. It returns bytes used per
// destination block.
func Allocate(set *record.Set, order []int, layout *segment.Layout, opts Options) ([]uint32, error) {
	s, err := NewSequential(layout, opts)
	if err != nil {
		return nil, err
	}
	canonical := make(map[uint32]*record.Record, len(order))
	for _, i := range order {
		r := set.At(i)
		if r.Dup && opts.CanonicalDuplicates {
			if c, ok := canonical[r.Source]; ok {
				r.NewAddress, r.NewBlock = c.NewAddress, c.NewBlock
				continue
			}
		}
		addr, block, err := s.Alloc(r.ReplacementLength)
		if err != nil {
			return nil, &format.RecordError{Stage: "alloc", Pointer: r.Pointer, Source: r.Source, Err: err}
		}
		r.NewAddress = addr
		r.NewBlock = block
		if _, ok := canonical[r.Source]; !ok {
			canonical[r.Source] = r
		}
	}
	return s.Used(), nil
}
