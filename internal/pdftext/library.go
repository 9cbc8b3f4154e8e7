package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LibraryExtractor reads the text layer with github.com/ledongthuc/pdf, rebuilding
// lines from the rows the library reports.
type LibraryExtractor struct{}

// NewLibraryExtractor creates a LibraryExtractor.
func NewLibraryExtractor() *LibraryExtractor {
	return &LibraryExtractor{}
}

// ExtractText implements Extractor. Pages are separated by PageSeparator.
func (e *LibraryExtractor) ExtractText(pdfPath string) (text string, err error) {
	// the library panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library failed on %s: %v", pdfPath, r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return "", ErrNoText
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	text = strings.Join(pages, "\n"+PageSeparator)
	if strings.TrimSpace(strings.ReplaceAll(text, PageSeparator, "")) == "" {
		return "", ErrNoText
	}
	return text, nil
}
