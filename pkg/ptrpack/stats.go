package ptrpack

import "github.com/joshuapare/ptrpack/table/length"

// BlockStats summarizes one destination block.
type BlockStats struct {
	ID       int
	Start    uint32
	End      uint32
	Overflow bool
	Capacity uint32
	Used     uint32
	// Records counts the canonical records with text placed here.
	Records int
}

// Slack returns unused bytes at the end of the block.
func (b BlockStats) Slack() uint32 {
	if b.Used > b.Capacity {
		return 0
	}
	return b.Capacity - b.Used
}

// Stats summarizes a build.
type Stats struct {
	Table        string
	Records      int
	Duplicates   int
	Placeholders int
	// SourceBytes and ReplacementBytes total canonical string lengths.
	SourceBytes      uint64
	ReplacementBytes uint64
	// Spilled counts records whose text landed in a later block than the
	// original string.
	Spilled     int
	Diagnostics int
	Blocks      []BlockStats
}

// OverflowUsed reports whether any text was placed in the overflow region.
func (s Stats) OverflowUsed() bool {
	for _, b := range s.Blocks {
		if b.Overflow && b.Used > 0 {
			return true
		}
	}
	return false
}

// Stats computes a summary of r.
func (r *Result) Stats() Stats {
	st := Stats{
		Table:       r.Set.Name,
		Records:     r.Set.Len(),
		Diagnostics: len(r.Diagnostics),
	}
	st.SourceBytes, st.ReplacementBytes = length.Totals(r.Set)

	st.Blocks = make([]BlockStats, len(r.Layout.Blocks))
	for i, b := range r.Layout.Blocks {
		st.Blocks[i] = BlockStats{
			ID:       b.ID,
			Start:    b.Start,
			End:      b.End,
			Overflow: b.Overflow,
			Capacity: b.Capacity(),
			Used:     r.Used[b.ID],
		}
	}

	for i := range r.Set.Records {
		rec := r.Set.At(i)
		switch {
		case rec.Dup:
			st.Duplicates++
			continue
		case rec.ReplacementLength == 0:
			st.Placeholders++
			continue
		}
		st.Blocks[rec.NewBlock].Records++
		if rec.NewBlock != rec.Block {
			st.Spilled++
		}
	}
	return st
}
