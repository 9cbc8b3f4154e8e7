// Package pdftext turns statement files into plain text: PDFs through their text
// layer, text dumps through a charset-aware reader.
package pdftext

import (
	"errors"
	"fmt"
	"strings"
)

// PageSeparator joins the text of consecutive pages.
const PageSeparator = "\f"

// ErrNoText is returned when a PDF yields no text, typically a scanned document.
var ErrNoText = errors.New("no text layer found in PDF")

// Extractor extracts the text content of a PDF file.
type Extractor interface {
	ExtractText(pdfPath string) (string, error)
}

// ChainExtractor tries each extractor in order and returns the first non-empty text.
type ChainExtractor struct {
	Extractors []Extractor
}

// NewDefaultExtractor reads with the Go PDF library first and falls back to pdftotext.
func NewDefaultExtractor() *ChainExtractor {
	return &ChainExtractor{Extractors: []Extractor{NewLibraryExtractor(), NewCommandExtractor()}}
}

// ExtractText implements Extractor.
func (c *ChainExtractor) ExtractText(pdfPath string) (string, error) {
	var errs []error
	for _, e := range c.Extractors {
		text, err := e.ExtractText(pdfPath)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = ErrNoText
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("no PDF extractor configured")
	}
	return "", fmt.Errorf("extracting text from %s: %w", pdfPath, errors.Join(errs...))
}

// MockExtractor returns predefined text or error.
type MockExtractor struct {
	MockText string
	MockErr  error
}

// NewMockExtractor creates a MockExtractor.
func NewMockExtractor(text string, err error) *MockExtractor {
	return &MockExtractor{MockText: text, MockErr: err}
}

// ExtractText implements Extractor.
func (e *MockExtractor) ExtractText(pdfPath string) (string, error) {
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}
