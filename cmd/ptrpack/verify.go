package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ptrpack/internal/logger"
	"github.com/joshuapare/ptrpack/pkg/ptrpack"
	"github.com/joshuapare/ptrpack/table/verify"
)

var verifyDir string

func init() {
	cmd := newVerifyCmd()
	cmd.Flags().StringVarP(&verifyDir, "dir", "d", "", "Directory holding the built files (default from config, else .)")
	rootCmd.AddCommand(cmd)
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <table.tsv>...",
		Short: "Check built files against their tables",
		Long: `The verify command rebuilds each table in memory and compares the
result byte for byte with the files in the output directory. It also warns
when the pointer slots of a table are not contiguous, and when a block ends
before an original string inside it does.

Example:
  ptrpack verify menu.tsv
  ptrpack verify menu.tsv items.tsv -d patch/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

type verifyReport struct {
	Table    string   `json:"table"`
	Files    int      `json:"files"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

func runVerify(args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	dir := verifyDir
	if dir == "" {
		dir = cfg.OutputDir
	}

	failed := 0
	reports := make([]verifyReport, 0, len(args))
	for _, path := range args {
		res, err := ptrpack.BuildFile(path, opts)
		if err != nil {
			return err
		}
		rep := verifyReport{Table: res.Set.Name, Files: len(res.Artifacts)}
		for _, err := range []error{verify.PointerSlots(res.Set), verify.Spans(res.Set, res.Layout)} {
			if err != nil {
				rep.Warnings = append(rep.Warnings, err.Error())
			}
		}
		for _, e := range res.CompareDir(dir) {
			logger.Error("verify failed", "table", res.Set.Name, "err", e)
			rep.Errors = append(rep.Errors, e.Error())
		}
		if len(rep.Errors) > 0 {
			failed++
		}
		reports = append(reports, rep)
	}

	if jsonOut {
		if err := printJSON(reports); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			status := "OK"
			if len(rep.Errors) > 0 {
				status = "FAILED"
			}
			printInfo("%s: %s (%d files)\n", rep.Table, status, rep.Files)
			for _, w := range rep.Warnings {
				printInfo("  warning: %s\n", w)
			}
			for _, e := range rep.Errors {
				printInfo("  %s\n", e)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tables do not match", failed, len(args))
	}
	return nil
}
