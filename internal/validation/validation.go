// Package validation checks command-line inputs before any work starts.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// SupportedFormats lists the output formats the CLI can write.
var SupportedFormats = []string{"csv", "json"}

// InputFile checks that path names an existing regular file.
func InputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("input file is required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking input file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input %s is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input file is empty: %s", path)
	}
	return nil
}

// OutputPath accepts an empty path or "-" for stdout, otherwise anything that is not
// an existing directory.
func OutputPath(path string) error {
	if path == "" || path == "-" {
		return nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", path)
	}
	return nil
}

// OutputFormat checks that format is supported. Matching ignores case.
func OutputFormat(format string) error {
	for _, f := range SupportedFormats {
		if strings.EqualFold(format, f) {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are %s",
		format, strings.Join(SupportedFormats, ", "))
}
