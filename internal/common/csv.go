// Package common holds the output writers shared by the CLI and the HTTP API.
package common

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"

	"github.com/gocarina/gocsv"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// DefaultDelimiter separates CSV columns unless configured otherwise.
const DefaultDelimiter = ','

// ExpenseRow is the CSV shape of an expense. Amounts are written with two decimals.
type ExpenseRow struct {
	ID           string `csv:"id"`
	Date         string `csv:"date"`
	Description  string `csv:"description"`
	Amount       string `csv:"amount"`
	Currency     string `csv:"currency"`
	Category     string `csv:"category"`
	Confidence   string `csv:"confidence"`
	Source       string `csv:"source"`
	Installment  string `csv:"installment"`
	OriginalText string `csv:"original_text"`
}

// ToRows converts expenses to CSV rows.
func ToRows(expenses []models.ExtractedExpense) []*ExpenseRow {
	rows := make([]*ExpenseRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, &ExpenseRow{
			ID:           e.ID,
			Date:         e.Date,
			Description:  e.Description,
			Amount:       e.Amount.StringFixed(2),
			Currency:     e.Currency,
			Category:     e.Category,
			Confidence:   string(e.Confidence),
			Source:       string(e.Source),
			Installment:  e.Installment,
			OriginalText: e.OriginalText,
		})
	}
	return rows
}

// ParseDelimiter returns the first rune of s, or DefaultDelimiter when s is empty.
func ParseDelimiter(s string) rune {
	if r := []rune(s); len(r) > 0 {
		return r[0]
	}
	return DefaultDelimiter
}

// WriteExpensesCSV writes expenses as CSV with a header row.
func WriteExpensesCSV(w io.Writer, expenses []models.ExtractedExpense, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	rows := ToRows(expenses)
	if len(rows) == 0 {
		// gocsv writes nothing for an empty slice; keep the header
		if err := csvWriter.Write(header()); err != nil {
			return fmt.Errorf("error writing CSV header: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

func header() []string {
	return []string{"id", "date", "description", "amount", "currency", "category", "confidence", "source", "installment", "original_text"}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}
	return nil
}

// WriteOutput writes expenses in format to path, or to stdout when path is empty or "-".
// JSON output encodes payload, which lets callers emit a richer document than the list.
func WriteOutput(path, format string, delimiter rune, expenses []models.ExtractedExpense, payload interface{}, logger logging.Logger) error {
	logger = logging.OrDefault(logger)

	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
		file, err := os.Create(path) // #nosec G304 -- CLI tool requires user-provided file paths
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer func() {
			if err := file.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close output file",
					logging.F(logging.FieldOutputFile, path))
			}
		}()
		w = file
	}

	var err error
	switch strings.ToLower(format) {
	case FormatJSON:
		if payload == nil {
			payload = expenses
		}
		err = WriteJSON(w, payload)
	case FormatCSV, "":
		err = WriteExpensesCSV(w, expenses, delimiter)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}

	logger.Info("Wrote expenses",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(expenses)),
		logging.F("format", format))
	return nil
}
