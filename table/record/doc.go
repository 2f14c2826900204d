// Package record defines the unit every repacking stage works on: one
// (pointer slot, string) pair lifted from the original image, plus the
// fields later stages fill in.
//
// # Lifecycle
//
// A Set is loaded once from the extractor's table and then enriched in
// place, one stage at a time:
//
//	length.Apply     -> SourceLength, ReplacementBytes, ReplacementLength
//	segment.Segment  -> Block
//	alloc.Allocate   -> NewAddress, NewBlock
//
// Stages never reorder Records. Orderings are index views produced by
// ByAddress and ByPointer, so the extraction order stays available as the
// tie-breaker for equal addresses.
//
// # Duplicates
//
// Several pointer slots may point at the same stored string. The first
// record at a given Source address is canonical; the rest carry zero
// lengths and, like untranslated rows, point wherever packing has reached.
package record
