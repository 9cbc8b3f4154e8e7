package jsonrecovery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"fedelife/expense-extractor/internal/currencyutils"
	"fedelife/expense-extractor/internal/dateutils"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/parsererror"
	"fedelife/expense-extractor/internal/textutils"

	"github.com/shopspring/decimal"
)

// Field aliases, matched case-insensitively in this order.
var (
	descriptionAliases = []string{"description", "descripcion", "desc", "concepto", "detalle", "merchant"}
	dateAliases        = []string{"date", "fecha"}
	amountAliases      = []string{"amount", "monto", "importe", "value"}
	currencyAliases    = []string{"currency", "moneda"}
	categoryAliases    = []string{"category", "categoria"}
	confidenceAliases  = []string{"confidence", "confianza"}

	expensesAliases = []string{"expenses", "gastos"}
	successAliases  = []string{"success", "exito"}
	summaryAliases  = []string{"summary", "resumen"}
)

func (e Element) lookup(aliases []string) (interface{}, bool) {
	for _, alias := range aliases {
		if v, ok := e[alias]; ok {
			return v, true
		}
		for k, v := range e {
			if strings.EqualFold(k, alias) {
				return v, true
			}
		}
	}
	return nil, false
}

func (e Element) text(aliases []string) string {
	v, ok := e.lookup(aliases)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// amount returns the element's amount as a positive magnitude rounded to cents.
func (e Element) amount() (decimal.Decimal, error) {
	v, ok := e.lookup(amountAliases)
	if !ok || v == nil {
		return decimal.Zero, &parsererror.ValidationError{Field: "amount", Reason: "missing"}
	}

	var (
		amount decimal.Decimal
		err    error
	)
	switch t := v.(type) {
	case json.Number:
		amount, err = decimal.NewFromString(t.String())
	case float64:
		amount = decimal.NewFromFloat(t)
	case string:
		amount, err = currencyutils.ParseAmount(t)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return decimal.Zero, &parsererror.ValidationError{Field: "amount", Reason: err.Error()}
	}

	amount = currencyutils.Round2(amount.Abs())
	if !amount.IsPositive() {
		return decimal.Zero, &parsererror.ValidationError{Field: "amount", Reason: "must be positive after rounding to cents"}
	}
	return amount, nil
}

// check applies the per-element rules: a description, a positive amount and, when
// requireDate is set, a date.
func (e Element) check(requireDate bool) error {
	if e.text(descriptionAliases) == "" {
		return &parsererror.ValidationError{Field: "description", Reason: "missing"}
	}
	if requireDate && e.text(dateAliases) == "" {
		return &parsererror.ValidationError{Field: "date", Reason: "missing"}
	}
	_, err := e.amount()
	return err
}

// toExpense builds an expense from a checked element.
func (e Element) toExpense(id string, descMax int, defaultConfidence models.Confidence) (models.ExtractedExpense, error) {
	amount, err := e.amount()
	if err != nil {
		return models.ExtractedExpense{}, err
	}

	description := textutils.TruncateDescription(e.text(descriptionAliases), descMax)
	currency := normalizeCurrency(e.text(currencyAliases))
	if description == "" {
		description = models.FallbackDescription(currency, amount)
	}

	date := e.text(dateAliases)
	if iso := dateutils.NormalizeISO(date); iso != "" {
		date = iso
	}

	confidence := defaultConfidence
	if v, ok := e.lookup(confidenceAliases); ok {
		if c, ok := toConfidence(v); ok {
			confidence = c
		}
	}

	original, _ := json.Marshal(e)

	return models.ExtractedExpense{
		ID:           id,
		Date:         date,
		Description:  description,
		Amount:       amount,
		Currency:     currency,
		Category:     models.NormalizeCategory(e.text(categoryAliases)),
		Confidence:   confidence,
		OriginalText: string(original),
		Source:       models.SourceModel,
	}, nil
}

// normalizeCurrency maps symbols onto ISO codes and upper-cases anything else.
func normalizeCurrency(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if code := currencyutils.CurrencyForSymbol(raw, ""); code != "" {
		return code
	}
	if raw == "$" {
		return ""
	}
	return strings.ToUpper(raw)
}

func toConfidence(v interface{}) (models.Confidence, bool) {
	if s, ok := v.(string); ok {
		if c, ok := models.ParseConfidence(s); ok {
			return c, true
		}
	}
	score, ok := toScore(v)
	if !ok {
		return "", false
	}
	return models.ConfidenceFromScore(score), true
}

// toScore reads a 0..1 score; values up to 100 are taken as percentages.
func toScore(v interface{}) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case string:
		f, err = strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
	default:
		return 0, false
	}
	if err != nil || f < 0 {
		return 0, false
	}
	if f > 1 {
		if f > 100 {
			return 0, false
		}
		f /= 100
	}
	return f, true
}
