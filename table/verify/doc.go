// Package verify checks a repacked table and its artifacts against the
// layout invariants the image build depends on.
//
// # Quick Start
//
//	if err := verify.AllInvariants(set, layout, artifacts, verify.Options{}); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// # Checks
//
// Layout validates the discovered blocks:
//   - Blocks are in ascending address order and do not overlap
//   - Every canonical record starts inside its block
//
// Artifacts validates emitted binaries:
//   - The pointer table holds one entry per record, in pointer-slot order
//   - Every string block file is exactly its block's capacity
//   - With Options.CanonicalDuplicates, duplicate pointers target the same
//     address as their canonical record
//   - Every pointer with content lands inside an emitted block, and the bytes
//     there are the record's encoded replacement
//
// Spans reports original strings that run past the end of their block,
// which happens when an empty record sits inside a longer string. Like
// PointerSlots it is advisory.
//
// PointerSlots reports pointer tables with holes. This is advisory: the
// emitted table is still well formed, but the build step will write it over
// slots that were not extracted.
//
// # ValidationError
//
// Every check returns *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string                 // check that failed, e.g. "PointerTable"
//	    Message string                 // human-readable description
//	    Address int64                  // image address involved (-1 if N/A)
//	    Details map[string]interface{} // additional context
//	}
package verify
