package record

import (
	"sort"

	"golang.org/x/text/encoding/japanese"
)

// Record is one entry of the original pointer table.
type Record struct {
	// Index is the record's position in extraction order.
	Index int

	// Pointer is the address of the 4-byte slot holding this record's pointer.
	Pointer uint32
	// Source is the address the original string starts at.
	Source uint32
	// SourceBytes is the original string content without its terminator.
	SourceBytes []byte
	// Replacement is the translated text; empty means nothing is stored.
	Replacement string

	// Dup marks a second pointer to a string an earlier record already stores.
	Dup bool

	SourceLength      uint32
	ReplacementBytes  []byte
	ReplacementLength uint32
	Block             int
	NewAddress        uint32
	NewBlock          int
}

// SourceText decodes SourceBytes for display.
func (r *Record) SourceText() string {
	return DecodeSource(r.SourceBytes)
}

// Set is an ordered collection of records from one pointer table.
type Set struct {
	// Name identifies the table; it prefixes every emitted file name.
	Name    string
	Records []Record
}

// NewSet returns an empty set named name.
func NewSet(name string) *Set {
	return &Set{Name: name}
}

// Add appends a record in extraction order and returns its index.
func (s *Set) Add(pointer, source uint32, sourceBytes []byte, replacement string) int {
	idx := len(s.Records)
	s.Records = append(s.Records, Record{
		Index:       idx,
		Pointer:     pointer,
		Source:      source,
		SourceBytes: sourceBytes,
		Replacement: replacement,
	})
	return idx
}

// Len returns the number of records.
func (s *Set) Len() int { return len(s.Records) }

// At returns the record at extraction index i.
func (s *Set) At(i int) *Record { return &s.Records[i] }

// Reset clears every derived field so the set can be processed again.
func (s *Set) Reset() {
	for i := range s.Records {
		r := &s.Records[i]
		r.Dup = false
		r.SourceLength = 0
		r.ReplacementBytes = nil
		r.ReplacementLength = 0
		r.Block = 0
		r.NewAddress = 0
		r.NewBlock = 0
	}
}

// ByAddress returns record indices sorted ascending by Source address.
// Ties keep extraction order.
func (s *Set) ByAddress() []int {
	return s.sortedBy(func(a, b *Record) bool { return a.Source < b.Source })
}

// ByPointer returns record indices sorted ascending by pointer slot address.
func (s *Set) ByPointer() []int {
	return s.sortedBy(func(a, b *Record) bool { return a.Pointer < b.Pointer })
}

// InBlock returns indices of records placed in destination block id, sorted
// ascending by NewAddress.
func (s *Set) InBlock(id int) []int {
	var out []int
	for i := range s.Records {
		if s.Records[i].NewBlock == id {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return s.Records[out[a]].NewAddress < s.Records[out[b]].NewAddress
	})
	return out
}

func (s *Set) sortedBy(less func(a, b *Record) bool) []int {
	idx := make([]int, len(s.Records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return less(&s.Records[idx[a]], &s.Records[idx[b]])
	})
	return idx
}

// DecodeSource renders original string bytes as text. Invalid sequences
// become U+FFFD rather than failing; this is for review only.
func DecodeSource(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
