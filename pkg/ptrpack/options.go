package ptrpack

import (
	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/table/textenc"
)

// Options controls a build.
type Options struct {
	// Text configures replacement encoding: extra substitutions and
	// width folding.
	Text textenc.Options

	// OverflowBase is where the overflow region starts.
	// Default: 0
	OverflowBase uint32

	// StrictOverflow fails the build instead of placing text in the
	// overflow region.
	StrictOverflow bool

	// CanonicalDuplicates points every duplicate at the string its first
	// pointer stores. By default duplicates, like untranslated rows, take
	// the packing cursor.
	CanonicalDuplicates bool
}

// DefaultOptions returns the options Build uses when given nil.
func DefaultOptions() *Options {
	return &Options{
		Text:         textenc.DefaultOptions(),
		OverflowBase: format.DefaultOverflowBase,
	}
}
