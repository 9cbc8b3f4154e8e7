// Package parsererror defines the typed errors returned by the shell around the
// extraction core: document reading, the model call, rate lookups and validation.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned when a document yields no text at all.
var ErrEmptyDocument = errors.New("document contains no text")

// ErrNoExpenses marks an analysis that found nothing on any path.
var ErrNoExpenses = errors.New("no expenses found")

// ExtractionError wraps a failure while turning a source document into text.
type ExtractionError struct {
	Source string
	Stage  string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: extraction failed at %s: %v", e.Source, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// RecoveryError reports why a recovery stage rejected a model response.
type RecoveryError struct {
	Stage string
	Err   error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("recovery stage %s: %v", e.Stage, e.Err)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}

// ValidationError is a field-level rejection of an extracted element.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidFormatError represents input that does not look like the expected format.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// RateError wraps a failed exchange-rate lookup.
type RateError struct {
	Source string
	Pair   string
	Err    error
}

func (e *RateError) Error() string {
	return fmt.Sprintf("exchange rate %s from %s: %v", e.Pair, e.Source, e.Err)
}

func (e *RateError) Unwrap() error {
	return e.Err
}
