package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Confidence is an ordinal quality signal for an extracted expense.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFromScore maps a 0..1 score to an ordinal.
func ConfidenceFromScore(score float64) Confidence {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ParseConfidence accepts "high"/"medium"/"low" in any case, plus the Spanish
// alta/media/baja. The second return is false for anything else.
func ParseConfidence(s string) (Confidence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "alta":
		return ConfidenceHigh, true
	case "medium", "media":
		return ConfidenceMedium, true
	case "low", "baja":
		return ConfidenceLow, true
	}
	return "", false
}

// Source records which extraction path produced an expense.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceModel     Source = "model"
)

// ExtractedExpense is one candidate expense transaction.
//
// Amount is always positive. Once currency normalization has run, Currency is the
// local code and OriginalText carries the pre-conversion amount.
type ExtractedExpense struct {
	ID           string          `json:"id" yaml:"id"`
	Date         string          `json:"date" yaml:"date"`
	Description  string          `json:"description" yaml:"description"`
	Amount       decimal.Decimal `json:"amount" yaml:"amount"`
	Currency     string          `json:"currency" yaml:"currency"`
	Category     string          `json:"category" yaml:"category"`
	Confidence   Confidence      `json:"confidence" yaml:"confidence"`
	OriginalText string          `json:"originalText" yaml:"original_text"`
	Source       Source          `json:"source,omitempty" yaml:"source,omitempty"`
	Installment  string          `json:"installment,omitempty" yaml:"installment,omitempty"`
}

// MarshalJSON writes Amount as a JSON number with two decimals instead of the
// quoted string decimal.Decimal produces. Decoding accepts either form.
func (e ExtractedExpense) MarshalJSON() ([]byte, error) {
	type plain ExtractedExpense
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain: plain(e), Amount: json.Number(e.Amount.StringFixed(2))})
}

// FallbackDescription synthesizes a description for an expense whose source had none.
func FallbackDescription(currency string, amount decimal.Decimal) string {
	if currency == "" {
		return fmt.Sprintf("Expense %s", amount.StringFixed(2))
	}
	return fmt.Sprintf("Expense %s %s", currency, amount.StringFixed(2))
}

// Fingerprint is the exact-duplicate key used when merging result sets.
func (e ExtractedExpense) Fingerprint() string {
	return e.Amount.Round(2).StringFixed(2) + "|" + strings.ToUpper(e.Currency)
}

// Validate checks the invariants every emitted expense must satisfy.
func (e ExtractedExpense) Validate() error {
	if !e.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", e.Amount.String())
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("description must not be empty")
	}
	if e.Currency == "" {
		return fmt.Errorf("currency must be resolved")
	}
	if !IsCategory(e.Category) {
		return fmt.Errorf("unknown category %q", e.Category)
	}
	return nil
}
