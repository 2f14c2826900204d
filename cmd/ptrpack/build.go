package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ptrpack/internal/logger"
	"github.com/joshuapare/ptrpack/pkg/ptrpack"
)

var (
	buildOut    string
	buildSync   bool
	buildDryRun bool
)

func init() {
	cmd := newBuildCmd()
	cmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output directory (default from config, else .)")
	cmd.Flags().BoolVar(&buildSync, "sync", false, "Flush each file to disk before renaming it into place")
	cmd.Flags().BoolVarP(&buildDryRun, "dry-run", "n", false, "Build and report without writing files")
	rootCmd.AddCommand(cmd)
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <table.tsv>...",
		Short: "Pack translated tables into binaries",
		Long: `The build command packs every table given and writes its pointer table
and string blocks. All tables are built before anything is written, so a
table that fails to build writes nothing. Tables are named after their file
names, which must differ. If writing fails part way, the error lists the
tables already written.

Example:
  ptrpack build menu.tsv
  ptrpack build menu.tsv items.tsv -o patch/
  ptrpack build dialog.tsv --overflow-base 0x80000 --sync`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args)
		},
	}
	return cmd
}

type builtFile struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Size  int    `json:"size"`
}

type builtTable struct {
	Table       string      `json:"table"`
	Input       string      `json:"input"`
	Records     int         `json:"records"`
	Diagnostics []string    `json:"diagnostics,omitempty"`
	Files       []builtFile `json:"files"`
}

func runBuild(args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	out := buildOut
	if out == "" {
		out = cfg.OutputDir
	}

	results := make([]*ptrpack.Result, 0, len(args))
	inputs := make(map[string]string, len(args))
	for _, path := range args {
		printVerbose("Building %s\n", path)
		res, err := ptrpack.BuildFile(path, opts)
		if err != nil {
			return err
		}
		if prev, ok := inputs[res.Set.Name]; ok {
			return fmt.Errorf("%s and %s both produce table %q", prev, path, res.Set.Name)
		}
		inputs[res.Set.Name] = path
		logger.Info("built table", "table", res.Set.Name, "records", res.Set.Len(), "artifacts", len(res.Artifacts))
		results = append(results, res)
	}

	summary := make([]builtTable, 0, len(results))
	var written []string
	for i, res := range results {
		if !buildDryRun {
			if err := res.WriteDir(out, buildSync || cfg.Sync); err != nil {
				if len(written) > 0 {
					return fmt.Errorf("%s: %w (already written: %s)", res.Set.Name, err, strings.Join(written, ", "))
				}
				return fmt.Errorf("%s: %w", res.Set.Name, err)
			}
			written = append(written, res.Set.Name)
		}
		bt := builtTable{Table: res.Set.Name, Input: args[i], Records: res.Set.Len()}
		for _, d := range res.Diagnostics {
			bt.Diagnostics = append(bt.Diagnostics, d.String())
		}
		for _, a := range res.Artifacts {
			bt.Files = append(bt.Files, builtFile{
				Name:  a.Name,
				Start: fmt.Sprintf("0x%x", a.Start),
				End:   fmt.Sprintf("0x%x", a.End),
				Size:  a.Size(),
			})
		}
		summary = append(summary, bt)
	}

	if jsonOut {
		return printJSON(summary)
	}

	verb := "Wrote"
	if buildDryRun {
		verb = "Would write"
	}
	for _, bt := range summary {
		printInfo("%s: %d records\n", bt.Table, bt.Records)
		for _, f := range bt.Files {
			printInfo("  %s %s (%d bytes)\n", verb, f.Name, f.Size)
		}
		for _, d := range bt.Diagnostics {
			printInfo("  warning: %s\n", d)
		}
	}
	return nil
}
