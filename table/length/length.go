// Package length computes how many bytes each original and replacement
// string occupies, and zeroes both lengths for records that merely point at
// a string an earlier record already stores.
package length

import (
	"fmt"

	"github.com/joshuapare/ptrpack/internal/buf"
	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/table/record"
	"github.com/joshuapare/ptrpack/table/textenc"
)

// Source returns the bytes an original string occupies in the image: its
// content, a two-byte terminator, and two more bytes when that leaves the
// total off a word boundary. Content is whole two-byte characters, so the
// single correction always lands on a word boundary.
func Source(raw []byte) (uint32, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	if len(raw)%format.SourceCharSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes", format.ErrOddSourceLength, len(raw))
	}
	n := len(raw) + format.SourceTerminatorSize
	if !format.IsAligned(n) {
		n += format.SourceTerminatorSize
	}
	v, ok := buf.ToU32(n)
	if !ok {
		return 0, fmt.Errorf("%w: %d bytes", format.ErrAddressRange, n)
	}
	return v, nil
}

// Apply fills SourceLength, ReplacementBytes, ReplacementLength and Dup for
// every record, in extraction order. Control-code diagnostics are returned
// with the record's addresses filled in.
func Apply(set *record.Set, enc *textenc.Encoder) ([]textenc.Diagnostic, error) {
	var diags []textenc.Diagnostic
	seen := make(map[uint32]struct{}, set.Len())

	for i := range set.Records {
		r := set.At(i)

		srcLen, err := Source(r.SourceBytes)
		if err != nil {
			return nil, recordErr(r, err)
		}
		out, ds, err := enc.Encode(r.Replacement)
		if err != nil {
			return nil, recordErr(r, err)
		}
		repLen, ok := buf.ToU32(len(out))
		if !ok {
			return nil, recordErr(r, format.ErrAddressRange)
		}
		for _, d := range ds {
			d.Pointer, d.Source = r.Pointer, r.Source
			diags = append(diags, d)
		}

		r.ReplacementBytes = out
		if _, dup := seen[r.Source]; dup {
			r.Dup = true
			r.SourceLength = 0
			r.ReplacementLength = 0
			continue
		}
		seen[r.Source] = struct{}{}
		r.Dup = false
		r.SourceLength = srcLen
		r.ReplacementLength = repLen
	}
	return diags, nil
}

// Totals sums canonical source and replacement lengths.
func Totals(set *record.Set) (source, replacement uint64) {
	for i := range set.Records {
		source += uint64(set.Records[i].SourceLength)
		replacement += uint64(set.Records[i].ReplacementLength)
	}
	return source, replacement
}

func recordErr(r *record.Record, err error) error {
	return &format.RecordError{Stage: "length", Pointer: r.Pointer, Source: r.Source, Err: err}
}
