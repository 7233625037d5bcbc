package common

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ValidateOutputFormat checks format against the configured formats. An
// empty list allows anything the registry can render.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %s",
		format, strings.Join(supportedFormats, ", "))
}

// ValidateFabricationLevel rejects levels outside 0..100 given on the
// command line. The HTTP API clamps instead.
func ValidateFabricationLevel(level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("fabrication level must be between 0 and 100, got %d", level)
	}
	return nil
}

// ValidateOutputFile checks that the parent directory of filename exists
// or can be created. Empty means stdout.
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}
	if info, err := os.Stat(filename); err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", filename)
	}

	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}
	return nil
}
