package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ptrpack/internal/config"
	"github.com/joshuapare/ptrpack/internal/logger"
	"github.com/joshuapare/ptrpack/pkg/ptrpack"
	"github.com/joshuapare/ptrpack/table/record"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	envFile    string
	logLevel   string
	logJSON    bool

	// Build flags shared by every command that runs the pipeline
	overflowBase   string
	strictOverflow bool
	canonicalDups  bool
	noFold         bool

	// cfg is resolved before any command runs.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "ptrpack",
	Short: "Repack translated pointer tables into patchable binaries",
	Long: `ptrpack takes a table of pointer slots, original strings and their
translations, packs the translated text into the space the original strings
occupied, and writes a new pointer table plus one binary per string block.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Project file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON lines")

	rootCmd.PersistentFlags().StringVar(&overflowBase, "overflow-base", "", "Start address of the overflow region (hex)")
	rootCmd.PersistentFlags().
		BoolVar(&strictOverflow, "strict-overflow", false, "Fail instead of spilling text into the overflow region")
	rootCmd.PersistentFlags().
		BoolVar(&canonicalDups, "canonical-duplicates", false, "Point duplicate pointers at their first string instead of the packing cursor")
	rootCmd.PersistentFlags().BoolVar(&noFold, "no-fold", false, "Disable fullwidth and ellipsis folding")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// setup resolves configuration and starts logging.
func setup() error {
	c, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}
	cfg = c

	name := logLevel
	if name == "" {
		name = cfg.LogLevel
	}
	level, err := logger.ParseLevel(name)
	if err != nil {
		return err
	}
	switch {
	case quiet:
		level = slog.LevelError
	case verbose && level > slog.LevelDebug:
		level = slog.LevelDebug
	}
	logger.Init(logger.Options{
		Enabled: true,
		Writer:  os.Stderr,
		Level:   level,
		JSON:    logJSON || cfg.LogFormat == "json",
		RunID:   logger.NewRunID(),
	})
	if cfg.Source != "" {
		logger.Debug("loaded config", "path", cfg.Source)
	}
	return nil
}

// buildOptions merges the resolved config with command-line flags.
func buildOptions() (*ptrpack.Options, error) {
	opts := ptrpack.DefaultOptions()
	opts.Text.Substitutions = cfg.Substitutions
	opts.Text.FoldWidth = cfg.FoldWidth && !noFold
	opts.OverflowBase = cfg.OverflowBase
	opts.StrictOverflow = cfg.StrictOverflow || strictOverflow
	opts.CanonicalDuplicates = cfg.CanonicalDuplicates || canonicalDups

	if overflowBase != "" {
		base, err := record.ParseAddr(overflowBase)
		if err != nil {
			return nil, fmt.Errorf("--overflow-base: %w", err)
		}
		opts.OverflowBase = base
	}
	return opts, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
