// Package alloc assigns destination addresses to replacement strings.
//
// # Overview
//
// Destination blocks occupy the same address ranges the original strings
// did. The allocator walks records in ascending source-address order and
// packs each replacement string at a bump cursor inside the current block,
// first-fit and strictly left to right:
//
//   - Zero-length records, placeholders and duplicates, take the cursor
//     address without advancing it.
//   - With Options.CanonicalDuplicates, duplicates instead take the address
//     of the canonical record that stores their string.
//   - A string whose end would reach or pass the block end moves to the
//     start of the next block. The comparison is inclusive: a string never
//     ends exactly on the end of the block it was first offered to.
//   - After moving, the string must fit the new block; there is no second
//     move. A string longer than a whole block is a packing overflow.
//   - Closed blocks are never revisited.
//
// The last block of every layout is the synthetic overflow block. Running
// past its end is a packing overflow too.
//
// # Usage
//
//	layout, err := segment.Segment(set, order, segment.Options{})
//	if err != nil {
//	    return err
//	}
//	usage, err := alloc.Allocate(set, order, layout, alloc.Options{})
//	if err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// A Sequential allocator is not safe for concurrent use.
package alloc
