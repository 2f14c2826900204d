// Package config resolves build settings from defaults, an INI project
// file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/table/record"
)

// DefaultFile is the project file read when no path is given.
const DefaultFile = "ptrpack.ini"

// Environment variable names.
const (
	EnvOutputDir      = "PTRPACK_OUTPUT_DIR"
	EnvOverflowBase   = "PTRPACK_OVERFLOW_BASE"
	EnvStrictOverflow = "PTRPACK_STRICT_OVERFLOW"
	EnvLogLevel       = "PTRPACK_LOG_LEVEL"
)

// Config holds resolved settings. CLI flags are applied by the caller on top.
type Config struct {
	OutputDir      string
	OverflowBase   uint32
	StrictOverflow bool
	FoldWidth      bool
	Sync           bool
	LogLevel       string
	LogFormat      string

	// CanonicalDuplicates points duplicates at their canonical string
	// instead of the packing cursor.
	CanonicalDuplicates bool

	// Substitutions extend the encoder's default table.
	Substitutions map[string]string

	// Source is the INI file that was read, empty if none.
	Source string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutputDir:    ".",
		OverflowBase: format.DefaultOverflowBase,
		FoldWidth:    true,
		LogLevel:     "warn",
		LogFormat:    "text",
	}
}

// Load resolves settings. path names the INI file; empty means DefaultFile,
// whose absence is not an error. An explicitly named file must exist.
// envFile is loaded with godotenv when it exists; it never overrides
// variables already set in the environment.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	switch err := cfg.loadINI(path); {
	case err == nil:
		cfg.Source = path
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return cfg, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadINI(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	sec := f.Section(ini.DefaultSection)
	if k, err := sec.GetKey("output_dir"); err == nil {
		c.OutputDir = k.String()
	}
	if k, err := sec.GetKey("overflow_base"); err == nil {
		v, err := record.ParseAddr(k.String())
		if err != nil {
			return fmt.Errorf("%s: overflow_base: %w", path, err)
		}
		c.OverflowBase = v
	}
	for name, dst := range map[string]*bool{
		"strict_overflow":      &c.StrictOverflow,
		"canonical_duplicates": &c.CanonicalDuplicates,
		"fold_width":           &c.FoldWidth,
		"sync":                 &c.Sync,
	} {
		k, err := sec.GetKey(name)
		if err != nil {
			continue
		}
		v, err := k.Bool()
		if err != nil {
			return fmt.Errorf("%s: %s: %w", path, name, err)
		}
		*dst = v
	}
	if k, err := sec.GetKey("log_level"); err == nil {
		c.LogLevel = k.String()
	}
	if k, err := sec.GetKey("log_format"); err == nil {
		c.LogFormat = k.String()
	}

	if f.HasSection("substitutions") {
		subs := f.Section("substitutions")
		for _, k := range subs.Keys() {
			if c.Substitutions == nil {
				c.Substitutions = make(map[string]string)
			}
			c.Substitutions[k.Name()] = k.Value()
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.OutputDir = v
	}
	if v, ok := lookup(EnvOverflowBase); ok && v != "" {
		base, err := record.ParseAddr(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOverflowBase, err)
		}
		c.OverflowBase = base
	}
	if v, ok := lookup(EnvStrictOverflow); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrictOverflow, err)
		}
		c.StrictOverflow = b
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}
