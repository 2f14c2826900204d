// Package tsv reads record tables from tab-separated files and writes them
// back with the derived columns filled in.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/ptrpack/table/record"
)

// Column names written by Annotate. The first four are also the preferred
// input header.
const (
	ColPointer           = "pointer_address"
	ColSource            = "source_address"
	ColSourceBytes       = "source_bytes"
	ColReplacement       = "replacement_text"
	ColSourceText        = "source_text"
	ColSourceLength      = "source_length"
	ColReplacementLength = "replacement_length"
	ColBlock             = "block"
	ColNewAddress        = "new_address"
	ColNewBlock          = "new_block"
)

// aliases maps accepted header spellings to canonical column names. The
// jp_/en_ forms are what the string extractor writes.
var aliases = map[string]string{
	ColPointer:     ColPointer,
	"jp_pointer":   ColPointer,
	ColSource:      ColSource,
	"jp_address":   ColSource,
	ColSourceBytes: ColSourceBytes,
	"jp_string":    ColSourceBytes,
	ColReplacement: ColReplacement,
	"en_text":      ColReplacement,
}

var required = []string{ColPointer, ColSource, ColSourceBytes}

// ErrMissingColumn reports a header without one of the required columns.
var ErrMissingColumn = errors.New("tsv: missing column")

// TableName derives a table name from a file path: the base name without
// its extension.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadFile loads the table at path, naming the set after the file.
func ReadFile(path string) (*record.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set, err := Read(f, TableName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Read parses a tab-separated table. Input may be UTF-8 with or without a
// byte order mark, or UTF-16 with one (spreadsheet "Unicode text" export).
// Extra columns are ignored; a missing replacement column means every
// replacement is empty.
func Read(r io.Reader, name string) (*record.Set, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(dec)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canon, ok := aliases[key]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	set := record.NewSet(name)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(row) {
			continue
		}
		line, _ := cr.FieldPos(0)

		ptr, err := record.ParseAddr(cell(row, ColPointer))
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColPointer, err)
		}
		src, err := record.ParseAddr(cell(row, ColSource))
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColSource, err)
		}
		raw, err := record.ParseHexBytes(cell(row, ColSourceBytes))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		set.Add(ptr, src, raw, cell(row, ColReplacement))
	}
	return set, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Annotate writes set in address order with the derived columns of a
// completed build.
func Annotate(w io.Writer, set *record.Set) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{
		ColPointer, ColSource, ColSourceBytes, ColReplacement,
		ColSourceText, ColSourceLength, ColReplacementLength,
		ColBlock, ColNewAddress, ColNewBlock,
	}); err != nil {
		return err
	}

	for _, i := range set.ByAddress() {
		r := set.At(i)
		if err := cw.Write([]string{
			record.FormatAddr(r.Pointer),
			record.FormatAddr(r.Source),
			fmt.Sprintf("%x", r.SourceBytes),
			r.Replacement,
			r.SourceText(),
			strconv.FormatUint(uint64(r.SourceLength), 10),
			strconv.FormatUint(uint64(r.ReplacementLength), 10),
			strconv.Itoa(r.Block),
			record.FormatAddr(r.NewAddress),
			strconv.Itoa(r.NewBlock),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
