package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandExtractor shells out to poppler's pdftotext in layout mode.
type CommandExtractor struct {
	Binary  string
	Timeout time.Duration
}

// NewCommandExtractor uses pdftotext from PATH with a one minute limit.
func NewCommandExtractor() *CommandExtractor {
	return &CommandExtractor{Binary: "pdftotext", Timeout: time.Minute}
}

// ExtractText implements Extractor. Text is written to stdout, so no temporary
// file is left next to the input.
func (e *CommandExtractor) ExtractText(pdfPath string) (string, error) {
	binary, err := exec.LookPath(e.Binary)
	if err != nil {
		return "", fmt.Errorf("%s not available: %w", e.Binary, err)
	}

	ctx := context.Background()
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	// #nosec G204 -- CLI tool requires user-provided file paths
	cmd := exec.CommandContext(ctx, binary, "-layout", "-enc", "UTF-8", pdfPath, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running %s: %w (%s)", e.Binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
