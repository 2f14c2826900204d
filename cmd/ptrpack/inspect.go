package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/joshuapare/ptrpack/internal/tsv"
	"github.com/joshuapare/ptrpack/internal/writer"
	"github.com/joshuapare/ptrpack/pkg/ptrpack"
	"github.com/joshuapare/ptrpack/table/record"
)

var (
	inspectOut    string
	inspectRecord string
	inspectDump   bool
)

func init() {
	cmd := newInspectCmd()
	cmd.Flags().StringVarP(&inspectOut, "out", "o", "", "Write the annotated table to this file instead of stdout")
	cmd.Flags().StringVarP(&inspectRecord, "record", "r", "", "Show only the record at this pointer slot (hex)")
	cmd.Flags().BoolVar(&inspectDump, "dump", false, "With --record, dump every field of the record")
	rootCmd.AddCommand(cmd)
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <table.tsv>",
		Short: "Show where every string was placed",
		Long: `The inspect command builds a table without writing binaries and prints
it in address order with derived columns added: decoded original text,
original and translated lengths, source block, new address and new block.

Example:
  ptrpack inspect menu.tsv > menu.annotated.tsv
  ptrpack inspect menu.tsv --record 0x1f40
  ptrpack inspect menu.tsv --record 0x1f40 --dump`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args)
		},
	}
	return cmd
}

func runInspect(args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	res, err := ptrpack.BuildFile(args[0], opts)
	if err != nil {
		return err
	}

	if inspectRecord != "" {
		ptr, err := record.ParseAddr(inspectRecord)
		if err != nil {
			return fmt.Errorf("--record: %w", err)
		}
		return showRecord(res.Set, ptr)
	}

	if inspectOut == "" {
		if err := tsv.Annotate(os.Stdout, res.Set); err != nil {
			return fmt.Errorf("write annotated table: %w", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := tsv.Annotate(&buf, res.Set); err != nil {
		return fmt.Errorf("write annotated table: %w", err)
	}
	w := &writer.FileWriter{Dir: filepath.Dir(inspectOut), Sync: cfg.Sync}
	if err := w.WriteFile(filepath.Base(inspectOut), buf.Bytes()); err != nil {
		return fmt.Errorf("write annotated table: %w", err)
	}
	printVerbose("Wrote %s\n", inspectOut)
	return nil
}

type recordReport struct {
	Pointer           string `json:"pointer"`
	Source            string `json:"source"`
	SourceText        string `json:"source_text"`
	Replacement       string `json:"replacement"`
	Duplicate         bool   `json:"duplicate"`
	SourceLength      uint32 `json:"source_length"`
	ReplacementLength uint32 `json:"replacement_length"`
	Block             int    `json:"block"`
	NewAddress        string `json:"new_address"`
	NewBlock          int    `json:"new_block"`
}

func showRecord(set *record.Set, ptr uint32) error {
	var r *record.Record
	for i := range set.Records {
		if set.At(i).Pointer == ptr {
			r = set.At(i)
			break
		}
	}
	if r == nil {
		return fmt.Errorf("no record at pointer slot %s", record.FormatAddr(ptr))
	}

	if inspectDump {
		fmt.Fprint(os.Stdout, spew.Sdump(r))
		return nil
	}

	rep := recordReport{
		Pointer:           record.FormatAddr(r.Pointer),
		Source:            record.FormatAddr(r.Source),
		SourceText:        r.SourceText(),
		Replacement:       r.Replacement,
		Duplicate:         r.Dup,
		SourceLength:      r.SourceLength,
		ReplacementLength: r.ReplacementLength,
		Block:             r.Block,
		NewAddress:        record.FormatAddr(r.NewAddress),
		NewBlock:          r.NewBlock,
	}
	if jsonOut {
		return printJSON(rep)
	}

	printInfo("Pointer:     %s\n", rep.Pointer)
	printInfo("Source:      %s (block %d, %d bytes)\n", rep.Source, rep.Block, rep.SourceLength)
	printInfo("Original:    %s\n", rep.SourceText)
	printInfo("Translated:  %q\n", rep.Replacement)
	printInfo("Placed at:   %s (block %d, %d bytes)\n", rep.NewAddress, rep.NewBlock, rep.ReplacementLength)
	if rep.Duplicate {
		printInfo("Shares its string with an earlier pointer\n")
	}
	return nil
}
