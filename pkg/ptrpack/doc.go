/*
Package ptrpack repacks a translated pointer table into binaries that can be
written back over a ROM or disk image.

A table is a list of records, one per pointer slot. Each record names the
slot address, the address of the original string, the original bytes and
the replacement text. Build encodes every replacement, discovers the
contiguous regions the original strings occupied, packs the replacements
into those regions in address order and serializes the result.

# Quick Start

Build a table from a tab-separated file and write the artifacts:

	res, err := ptrpack.BuildFile("menu.tsv", nil)
	if err != nil {
	    log.Fatal(err)
	}
	if err := res.WriteDir("out", false); err != nil {
	    log.Fatal(err)
	}

# Artifacts

Every build produces one pointer table, named after the slot range it
covers, and one file per discovered block, zero-filled to the size of the
original region:

	menu_0x1000_0x1010.bin   pointer table, 4 little-endian bytes per slot
	menu_0x2000_0x2040.bin   block 0
	menu_0x2100_0x2180.bin   block 1

Text that does not fit in the discovered blocks spills into an overflow
region starting at Options.OverflowBase. Its file is written only when
something landed there.

# Error Handling

Build either returns a complete Result or an error; nothing is written
until Write or WriteDir is called. Per-record failures are
*format.RecordError values naming the record's pointer and source address:

	var re *format.RecordError
	if errors.As(err, &re) {
	    fmt.Printf("bad record at slot 0x%x\n", re.Pointer)
	}
	if errors.Is(err, format.ErrPackingOverflow) {
	    // replacement text is too long for the space available
	}
*/
package ptrpack
