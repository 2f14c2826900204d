package ptrpack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/ptrpack/internal/logger"
	"github.com/joshuapare/ptrpack/internal/tsv"
	"github.com/joshuapare/ptrpack/internal/writer"
	"github.com/joshuapare/ptrpack/table/alloc"
	"github.com/joshuapare/ptrpack/table/emit"
	"github.com/joshuapare/ptrpack/table/length"
	"github.com/joshuapare/ptrpack/table/record"
	"github.com/joshuapare/ptrpack/table/segment"
	"github.com/joshuapare/ptrpack/table/textenc"
	"github.com/joshuapare/ptrpack/table/verify"
)

// Sink receives artifacts by file name. *writer.FileWriter and
// *writer.MemWriter satisfy it.
type Sink interface {
	WriteFile(name string, data []byte) error
}

// Result is a completed build.
type Result struct {
	Set    *record.Set
	Layout *segment.Layout
	// Artifacts holds the pointer table first, then string blocks in id order.
	Artifacts []emit.Artifact
	// Diagnostics lists control-code matches left literal.
	Diagnostics []textenc.Diagnostic
	// Used is the number of bytes placed in each block, indexed by id.
	Used []uint32
}

// Build runs every stage over set and returns the artifacts. Derived record
// fields are recomputed from scratch, so building the same set twice gives
// the same result. If opts is nil, DefaultOptions is used.
func Build(set *record.Set, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	log := logger.L.With("table", set.Name)

	set.Reset()
	enc := textenc.New(opts.Text)
	diags, err := length.Apply(set, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", set.Name, err)
	}
	for _, d := range diags {
		log.Warn("control code skipped", "detail", d.String())
	}

	order := set.ByAddress()
	layout, err := segment.Segment(set, order, segment.Options{OverflowBase: opts.OverflowBase})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", set.Name, err)
	}
	log.Debug("segmented", "records", set.Len(), "blocks", len(layout.Discovered()))
	if err := verify.Spans(set, layout); err != nil {
		log.Warn("block shorter than its strings", "detail", err.Error())
	}

	used, err := alloc.Allocate(set, order, layout, alloc.Options{
		StrictOverflow:      opts.StrictOverflow,
		CanonicalDuplicates: opts.CanonicalDuplicates,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", set.Name, err)
	}
	if ov := layout.Overflow(); used[ov.ID] > 0 {
		log.Warn("text spilled into overflow region", "bytes", used[ov.ID], "base", record.FormatAddr(ov.Start))
	}

	arts, err := emit.All(set, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", set.Name, err)
	}
	if err := verify.AllInvariants(set, layout, arts, verify.Options{CanonicalDuplicates: opts.CanonicalDuplicates}); err != nil {
		return nil, fmt.Errorf("%s: %w", set.Name, err)
	}
	log.Debug("emitted", "artifacts", len(arts))

	return &Result{
		Set:         set,
		Layout:      layout,
		Artifacts:   arts,
		Diagnostics: diags,
		Used:        used,
	}, nil
}

// BuildFile loads a tab-separated table and builds it. The table is named
// after the file.
func BuildFile(path string, opts *Options) (*Result, error) {
	set, err := tsv.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(set, opts)
}

// Write hands every artifact to sink, pointer table first.
func (r *Result) Write(sink Sink) error {
	for _, a := range r.Artifacts {
		if err := sink.WriteFile(a.Name, a.Data); err != nil {
			return fmt.Errorf("write %s: %w", a.Name, err)
		}
	}
	return nil
}

// WriteDir writes every artifact into dir, each atomically.
func (r *Result) WriteDir(dir string, sync bool) error {
	return r.Write(&writer.FileWriter{Dir: dir, Sync: sync})
}

// CompareDir reads every expected artifact back from dir and reports each
// one that is missing or differs.
func (r *Result) CompareDir(dir string) []error {
	var errs []error
	for _, a := range r.Artifacts {
		got, err := os.ReadFile(filepath.Join(dir, a.Name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := verify.Match(a, got); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
