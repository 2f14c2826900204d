package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ptrpack/pkg/ptrpack"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <table.tsv>",
		Short: "Show space usage for a table",
		Long: `The stats command builds a table without writing it and reports how
the translated text fits: total bytes before and after, per-block capacity
and slack, records that moved to a later block, and overflow use.

Example:
  ptrpack stats menu.tsv
  ptrpack stats menu.tsv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

type blockReport struct {
	ID       int    `json:"id"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Overflow bool   `json:"overflow,omitempty"`
	Capacity uint32 `json:"capacity"`
	Used     uint32 `json:"used"`
	Slack    uint32 `json:"slack"`
	Records  int    `json:"records"`
}

type statsReport struct {
	Table            string        `json:"table"`
	Records          int           `json:"records"`
	Duplicates       int           `json:"duplicates"`
	Placeholders     int           `json:"placeholders"`
	SourceBytes      uint64        `json:"source_bytes"`
	ReplacementBytes uint64        `json:"replacement_bytes"`
	Spilled          int           `json:"spilled"`
	OverflowUsed     bool          `json:"overflow_used"`
	Diagnostics      int           `json:"diagnostics"`
	Blocks           []blockReport `json:"blocks"`
}

func runStats(args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	printVerbose("Building %s\n", args[0])
	res, err := ptrpack.BuildFile(args[0], opts)
	if err != nil {
		return err
	}
	st := res.Stats()

	rep := statsReport{
		Table:            st.Table,
		Records:          st.Records,
		Duplicates:       st.Duplicates,
		Placeholders:     st.Placeholders,
		SourceBytes:      st.SourceBytes,
		ReplacementBytes: st.ReplacementBytes,
		Spilled:          st.Spilled,
		OverflowUsed:     st.OverflowUsed(),
		Diagnostics:      st.Diagnostics,
	}
	for _, b := range st.Blocks {
		if b.Overflow && b.Used == 0 {
			continue
		}
		capacity := b.Capacity
		if b.Overflow {
			capacity = b.Used
		}
		rep.Blocks = append(rep.Blocks, blockReport{
			ID:       b.ID,
			Start:    fmt.Sprintf("0x%x", b.Start),
			End:      fmt.Sprintf("0x%x", b.Start+capacity),
			Overflow: b.Overflow,
			Capacity: capacity,
			Used:     b.Used,
			Slack:    capacity - b.Used,
			Records:  b.Records,
		})
	}

	if jsonOut {
		return printJSON(rep)
	}

	printInfo("\nTable Statistics: %s\n", rep.Table)
	printInfo("%s\n\n", strings.Repeat("=", 40))

	printInfo("Records:\n")
	printInfo("  Total: %d\n", rep.Records)
	printInfo("  Duplicates: %d\n", rep.Duplicates)
	printInfo("  Untranslated: %d\n", rep.Placeholders)
	printInfo("  Moved to a later block: %d\n\n", rep.Spilled)

	printInfo("Size:\n")
	printInfo("  Original: %d bytes\n", rep.SourceBytes)
	printInfo("  Translated: %d bytes", rep.ReplacementBytes)
	if rep.SourceBytes > 0 {
		printInfo(" (%.1f%%)", float64(rep.ReplacementBytes)*100.0/float64(rep.SourceBytes))
	}
	printInfo("\n\n")

	printInfo("Blocks:\n")
	for _, b := range rep.Blocks {
		label := fmt.Sprintf("block %d", b.ID)
		if b.Overflow {
			label = "overflow"
		}
		printInfo("  %-9s [%s, %s) %6d/%-6d bytes, %d free, %d records\n",
			label, b.Start, b.End, b.Used, b.Capacity, b.Slack, b.Records)
	}
	if rep.OverflowUsed {
		printInfo("\nwarning: text spilled into the overflow region\n")
	}
	if rep.Diagnostics > 0 {
		printInfo("warning: %d control codes left literal (see build output)\n", rep.Diagnostics)
	}
	return nil
}
