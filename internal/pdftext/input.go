package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// LegacyCharset is assumed for text dumps that are not valid UTF-8.
const LegacyCharset = "windows-1252"

// ReadTextFile reads a text dump, decoding it from LegacyCharset when it is not UTF-8.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return "", fmt.Errorf("error reading input file: %w", err)
	}
	return DecodeText(data)
}

// DecodeText returns data as a string, converting from LegacyCharset when needed.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}
	r, err := charset.NewReaderLabel(LegacyCharset, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("error decoding %s text: %w", LegacyCharset, err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("error decoding %s text: %w", LegacyCharset, err)
	}
	return string(decoded), nil
}

// IsPDF reports whether path names a PDF by extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ReadStatement returns the text of a statement file: PDFs go through extractor,
// anything else is read as text.
func ReadStatement(path string, extractor Extractor) (string, error) {
	if IsPDF(path) {
		if extractor == nil {
			extractor = NewDefaultExtractor()
		}
		return extractor.ExtractText(path)
	}
	return ReadTextFile(path)
}
