package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nugget/bmc2mqtt/examples"
)

// runInit initializes a bmc2mqtt working directory: the directory
// itself plus an example config.yaml. Existing files are never
// overwritten, so re-running init on a configured directory is safe.
func runInit(w io.Writer, dir string) error {
	fmt.Fprintf(w, "Initializing bmc2mqtt directory in %s\n", dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := writeIfMissing(configPath, examples.ConfigYAML); err != nil {
		return err
	}
	fmt.Fprintf(w, "  ✓ %s\n", configPath)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit config.yaml, then run: bmc2mqtt serve")
	return nil
}

// writeIfMissing writes content to path only if the file does not already
// exist. This ensures init never overwrites user customizations.
func writeIfMissing(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil // already exists, skip
	}
	return os.WriteFile(path, content, 0o600)
}
