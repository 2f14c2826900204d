// Package textenc turns replacement text into the bytes stored in the
// image: single-byte ASCII, an in-band auto-capitalize code, a pad byte
// for odd lengths, and a zero terminator padded out to a word boundary.
package textenc

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/joshuapare/ptrpack/internal/format"
)

// DefaultSubstitutions maps character sequences translators commonly paste
// in to something the target can render. The mojibake forms come from
// spreadsheets that round-tripped UTF-8 through Windows-1252.
var DefaultSubstitutions = map[string]string{
	"â€™": "'",
	"â€˜": "'",
	"â€œ": "\"",
	"’":   "'",
	"‘":   "'",
	"“":   "\"",
	"”":   "\"",
	"–":   "-",
	"—":   "-",
}

// Options configures an Encoder.
type Options struct {
	// Substitutions are applied before encoding, on top of DefaultSubstitutions.
	// An entry with the same key overrides the default.
	Substitutions map[string]string

	// FoldWidth applies NFKC folding after substitution so fullwidth Latin
	// letters and the ellipsis character become plain ASCII.
	FoldWidth bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{FoldWidth: true}
}

// Diagnostic records a control-code opportunity that could not be taken
// because the space sits on an odd character index.
type Diagnostic struct {
	Pointer uint32
	Source  uint32
	Index   int
	Letter  byte
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("ptr=0x%x src=0x%x: space before %q at odd index %d left literal",
		d.Pointer, d.Source, d.Letter, d.Index)
}

// Encoder converts replacement text to stored bytes. It holds no mutable
// state and may be shared.
type Encoder struct {
	replacer *strings.Replacer
	fold     bool
}

// New builds an Encoder from opts.
func New(opts Options) *Encoder {
	merged := make(map[string]string, len(DefaultSubstitutions)+len(opts.Substitutions))
	for k, v := range DefaultSubstitutions {
		merged[k] = v
	}
	for k, v := range opts.Substitutions {
		if k != "" {
			merged[k] = v
		}
	}

	// Longest key first so multi-byte mojibake wins over its own prefix;
	// the rest of the order only needs to be stable.
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, merged[k])
	}

	return &Encoder{replacer: strings.NewReplacer(pairs...), fold: opts.FoldWidth}
}

// Normalize applies substitutions and width folding without encoding.
func (e *Encoder) Normalize(text string) string {
	text = e.replacer.Replace(text)
	if e.fold {
		text = norm.NFKC.String(text)
	}
	return text
}

// Encode returns the stored form of text. Empty text encodes to nil. The
// result of non-empty text is always a positive multiple of the word size.
// Diagnostics carry only Index and Letter; callers fill in the record.
func (e *Encoder) Encode(text string) ([]byte, []Diagnostic, error) {
	if text == "" {
		return nil, nil, nil
	}
	text = e.Normalize(text)
	if text == "" {
		return nil, nil, nil
	}

	out := make([]byte, 0, format.Align4(len(text)+2))
	for i, r := range []rune(text) {
		if r == 0 || r > format.MaxEncodable {
			return nil, nil, fmt.Errorf("%w: %q at index %d", format.ErrEncoding, r, i)
		}
		out = append(out, byte(r))
	}

	diags := substituteControlCodes(out)

	if len(out)%2 != 0 {
		out = append(out, format.PadByte)
	}
	out = append(out, format.Terminator)
	for !format.IsAligned(len(out)) {
		out = append(out, format.Terminator)
	}
	return out, diags, nil
}

// substituteControlCodes rewrites "space, uppercase letter" pairs in place.
// A pair at an even index has its space replaced with letter-0x40; a pair at
// an odd index is reported and left alone. Matches never overlap.
func substituteControlCodes(b []byte) []Diagnostic {
	var diags []Diagnostic
	for i := 0; i+1 < len(b); {
		if b[i] != ' ' || !isUpper(b[i+1]) {
			i++
			continue
		}
		if i%2 == 0 {
			b[i] = b[i+1] - format.ControlCodeBias
		} else {
			diags = append(diags, Diagnostic{Index: i, Letter: b[i+1]})
		}
		i += 2
	}
	return diags
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
