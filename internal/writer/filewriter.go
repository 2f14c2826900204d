// Package writer exposes sinks for emitted artifacts.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives whole artifacts by file name.
type Sink interface {
	WriteFile(name string, data []byte) error
}

// FileWriter writes artifacts into Dir atomically via temp file + rename.
type FileWriter struct {
	Dir string
	// Sync flushes file data to disk before the rename.
	Sync bool
}

var _ Sink = (*FileWriter)(nil)

// WriteFile writes data to Dir/name, replacing any existing file.
func (w *FileWriter) WriteFile(name string, data []byte) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)

	// Create temp file in same directory to ensure atomic rename
	tmpFile, err := os.CreateTemp(dir, ".ptrpack-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}

	if w.Sync {
		if syncErr := datasync(tmpFile); syncErr != nil {
			return fmt.Errorf("sync temp file: %w", syncErr)
		}
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil // Don't clean up in defer

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}

	return nil
}
