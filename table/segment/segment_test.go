package segment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/table/record"
)

// newSet builds a set with source lengths already computed, one record per
// (address, length) pair, pointers assigned in slice order.
func newSet(t *testing.T, pairs ...[2]uint32) *record.Set {
	t.Helper()
	s := record.NewSet("t")
	for i, p := range pairs {
		idx := s.Add(0x100+uint32(4*i), p[0], nil, "")
		s.At(idx).SourceLength = p[1]
	}
	return s
}

func TestSegment_SingleBlock(t *testing.T) {
	s := newSet(t, [2]uint32{0x1000, 16}, [2]uint32{0x1010, 16}, [2]uint32{0x1020, 16})

	l, err := Segment(s, s.ByAddress(), Options{})
	require.NoError(t, err)

	require.Len(t, l.Discovered(), 1)
	assert.Equal(t, Block{ID: 0, Start: 0x1000, End: 0x1030}, l.Blocks[0])
	for i := range s.Records {
		assert.Equal(t, 0, s.At(i).Block)
	}
}

func TestSegment_GapStartsNewBlock(t *testing.T) {
	s := newSet(t,
		[2]uint32{0x1000, 16}, [2]uint32{0x1010, 16}, [2]uint32{0x1020, 16},
		[2]uint32{0x2000, 8},
	)

	l, err := Segment(s, s.ByAddress(), Options{})
	require.NoError(t, err)

	require.Len(t, l.Discovered(), 2)
	assert.Equal(t, Block{ID: 0, Start: 0x1000, End: 0x1030}, l.Blocks[0])
	assert.Equal(t, Block{ID: 1, Start: 0x2000, End: 0x2008}, l.Blocks[1])
	assert.Equal(t, 1, s.At(3).Block)
}

func TestSegment_AdjacentWithSlack(t *testing.T) {
	// second record starts exactly prevLen past the first: same block
	s := newSet(t, [2]uint32{0x1000, 8}, [2]uint32{0x1008, 8}, [2]uint32{0x1014, 4})

	l, err := Segment(s, s.ByAddress(), Options{})
	require.NoError(t, err)
	require.Len(t, l.Discovered(), 2)
	assert.Equal(t, uint32(0x1010), l.Blocks[0].End)
	assert.Equal(t, uint32(0x1014), l.Blocks[1].Start)
}

func TestSegment_DuplicatesDoNotAdvance(t *testing.T) {
	s := newSet(t,
		[2]uint32{0x1000, 8},
		[2]uint32{0x1008, 12},
		[2]uint32{0x1000, 0}, // duplicate of the first
		[2]uint32{0x1014, 8},
	)

	l, err := Segment(s, s.ByAddress(), Options{})
	require.NoError(t, err)
	require.Len(t, l.Discovered(), 1)
	assert.Equal(t, Block{ID: 0, Start: 0x1000, End: 0x101c}, l.Blocks[0])
	assert.Equal(t, 0, s.At(2).Block)
}

func TestSegment_EndFromFirstAtMaxAddress(t *testing.T) {
	// canonical at 0x1008 comes first in address order; the trailing
	// duplicate at the same address must not shrink End
	s := newSet(t, [2]uint32{0x1000, 8}, [2]uint32{0x1008, 8}, [2]uint32{0x1008, 0})

	l, err := Segment(s, s.ByAddress(), Options{})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1010), l.Blocks[0].End)
}

func TestSegment_OverflowBlock(t *testing.T) {
	s := newSet(t, [2]uint32{0x1000, 8})

	l, err := Segment(s, s.ByAddress(), Options{OverflowBase: 0x8010_0000})
	require.NoError(t, err)

	ov := l.Overflow()
	assert.True(t, ov.Overflow)
	assert.Equal(t, 1, ov.ID)
	assert.Equal(t, uint32(0x8010_0000), ov.Start)
	assert.Equal(t, format.SentinelCapacity, ov.Capacity())

	_, err = Segment(s, s.ByAddress(), Options{OverflowBase: 0xFFFF_0000})
	assert.ErrorIs(t, err, format.ErrAddressRange)
}

func TestSegment_Empty(t *testing.T) {
	_, err := Segment(record.NewSet("t"), nil, Options{})
	assert.ErrorIs(t, err, format.ErrEmptyTable)
}

func TestLayout_Lookup(t *testing.T) {
	l := &Layout{Blocks: []Block{{ID: 0, Start: 0, End: 4}, {ID: 1, Start: 8, End: 16, Overflow: true}}}

	b, err := l.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), b.Capacity())

	_, err = l.Lookup(2)
	assert.ErrorIs(t, err, format.ErrMissingBlock)
	_, err = l.Lookup(-1)
	assert.ErrorIs(t, err, format.ErrMissingBlock)
}

func TestBlock_Contains(t *testing.T) {
	b := Block{Start: 0x1000, End: 0x1010}
	assert.True(t, b.Contains(0x1000, 16))
	assert.True(t, b.Contains(0x100c, 4))
	assert.False(t, b.Contains(0x100c, 8))
	assert.False(t, b.Contains(0xffc, 4))
	assert.False(t, b.Contains(0xFFFF_FFFC, 8))
	assert.Equal(t, "block 0 [0x1000, 0x1010)", b.String())
}

// TestSegment_RandomLayoutsCoverRecords builds random tables of packed runs
// separated by gaps and checks blocks are ordered, disjoint, and cover every
// canonical record.
func TestSegment_RandomLayoutsCoverRecords(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		sizes := map[uint32]uint32{}
		var addrs []uint32
		addr := uint32(0x8001_0000)
		runs := 1 + rng.Intn(5)
		for range runs {
			for range 1 + rng.Intn(6) {
				n := uint32(4 * (1 + rng.Intn(8)))
				sizes[addr] = n
				addrs = append(addrs, addr)
				if rng.Intn(4) == 0 {
					addrs = append(addrs, addr)
				}
				addr += n
			}
			addr += uint32(4 * (1 + rng.Intn(16)))
		}
		rng.Shuffle(len(addrs), func(i, j int) { addrs[i], addrs[j] = addrs[j], addrs[i] })

		// first occurrence in extraction order is canonical
		var pairs [][2]uint32
		placed := map[uint32]bool{}
		for _, a := range addrs {
			n := sizes[a]
			if placed[a] {
				n = 0
			}
			placed[a] = true
			pairs = append(pairs, [2]uint32{a, n})
		}

		s := newSet(t, pairs...)
		l, err := Segment(s, s.ByAddress(), Options{})
		require.NoError(t, err)

		blocks := l.Discovered()
		for i := 1; i < len(blocks); i++ {
			assert.Less(t, blocks[i-1].End, blocks[i].Start, "blocks must be ordered and disjoint")
		}
		for i := range s.Records {
			r := s.At(i)
			b, err := l.Lookup(r.Block)
			require.NoError(t, err)
			assert.True(t, b.Contains(r.Source, r.SourceLength), "record 0x%x+%d outside %s", r.Source, r.SourceLength, b)
		}
	}
}
