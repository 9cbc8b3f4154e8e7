package categorizer

import (
	"errors"
	"testing"

	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) (*ExpenseValidator, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	return NewExpenseValidator(store.DefaultKeywordTables(), logger), logger
}

func TestExpenseValidator_Validate(t *testing.T) {
	v, _ := newTestValidator(t)

	tests := []struct {
		name       string
		line       string
		amount     string
		accepted   bool
		category   string
		confidence models.Confidence
		reason     string
	}{
		{
			name: "supermarket purchase", line: "12 03 24 COMPRA TIENDA INGLESA 1.250,00", amount: "1250",
			accepted: true, category: models.CategoryFood, confidence: models.ConfidenceMedium, reason: ReasonAccepted,
		},
		{
			name: "fuel", line: "DEBITO ANCAP PUNTA CARRETAS 2.100,00", amount: "2100",
			accepted: true, category: models.CategoryTransport, confidence: models.ConfidenceMedium, reason: ReasonAccepted,
		},
		{
			name: "utility automatic debit with dotted abbreviation", line: "DEB. AUT. UTE 3.450,00", amount: "3450",
			accepted: true, category: models.CategoryServices, confidence: models.ConfidenceMedium, reason: ReasonAccepted,
		},
		{
			name: "streaming", line: "NETFLIX.COM 12,99", amount: "12.99",
			accepted: true, category: models.CategoryEntertainment, confidence: models.ConfidenceMedium, reason: ReasonAccepted,
		},
		{
			name: "pharmacy with accents", line: "Compra Farmacia San Roque 320,00", amount: "320",
			accepted: true, category: models.CategoryHealth, confidence: models.ConfidenceMedium, reason: ReasonAccepted,
		},
		{
			name: "unclassified purchase is low confidence", line: "COMPRA ZZ IMPORTACIONES 999,00", amount: "999",
			accepted: true, category: models.CategoryOther, confidence: models.ConfidenceLow, reason: ReasonAccepted,
		},
		{
			name: "refund credit never accepted", line: "REFUND CREDIT 45.00", amount: "45",
			reason: ReasonNoExpenseSignal,
		},
		{
			name: "purchase reversal vetoed", line: "DEVOLUCION COMPRA TIENDA INGLESA 450,00", amount: "450",
			reason: ReasonIncomeVeto,
		},
		{
			name: "veto applies after expense match", line: "COMPRA AMAZON REFUND 30,00", amount: "30",
			reason: ReasonIncomeVeto,
		},
		{
			name: "salary deposit", line: "DEPOSITO SUELDO 45.000,00", amount: "45000",
			reason: ReasonNoExpenseSignal,
		},
		{
			name: "zero amount", line: "COMPRA TIENDA 0,00", amount: "0",
			reason: ReasonNonPositive,
		},
		{
			name: "keyword inside another word does not count", line: "DEPOSITORY CUTEST 10,00", amount: "10",
			reason: ReasonNoExpenseSignal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := v.Validate(tt.line, decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.accepted, d.Accepted)
			assert.Equal(t, tt.reason, d.Reason)
			if tt.accepted {
				assert.Equal(t, tt.category, d.Category)
				assert.Equal(t, tt.confidence, d.Confidence)
			}
		})
	}
}

func TestExpenseValidator_RefundCreditRejectedEvenWithExpenseKeyword(t *testing.T) {
	v, logger := newTestValidator(t)

	d := v.Validate("PAGO REFUND CREDIT 45.00", decimal.NewFromInt(45))
	assert.False(t, d.Accepted)
	assert.Equal(t, ReasonIncomeVeto, d.Reason)
	assert.Equal(t, "CREDIT", d.Keyword)
	assert.True(t, logger.HasEntry("DEBUG", "Candidate rejected by income keyword"))
}

func TestExpenseValidator_Categorize(t *testing.T) {
	v, _ := newTestValidator(t)

	category, found := v.Categorize("Supermercado Disco")
	assert.True(t, found)
	assert.Equal(t, models.CategoryFood, category)

	category, found = v.Categorize("Amazon Prime Video")
	assert.True(t, found)
	assert.Equal(t, models.CategoryEntertainment, category, "entertainment rule precedes shopping")

	category, found = v.Categorize("Gas station shell")
	assert.True(t, found)
	assert.Equal(t, models.CategoryTransport, category)

	category, found = v.Categorize("Unknown merchant")
	assert.False(t, found)
	assert.Equal(t, models.CategoryOther, category)

	assert.True(t, v.IsIncome("Transferencia recibida"))
	assert.False(t, v.IsIncome("Transferencia enviada"))
}

func TestNewExpenseValidatorFromSource(t *testing.T) {
	source := &store.MockKeywordStore{Tables: models.KeywordTables{
		Expense: []string{"KAUF"},
		Income:  []string{"GUTSCHRIFT"},
		Categories: []models.CategoryRule{
			{Name: models.CategoryFood, Keywords: []string{"MIGROS"}},
		},
	}}
	v, err := NewExpenseValidatorFromSource(source, logging.NewMockLogger())
	require.NoError(t, err)

	d := v.Validate("KAUF MIGROS ZURICH 45.00", decimal.NewFromInt(45))
	assert.True(t, d.Accepted)
	assert.Equal(t, models.CategoryFood, d.Category)

	_, err = NewExpenseValidatorFromSource(&store.MockKeywordStore{Err: errors.New("disk")}, nil)
	assert.ErrorContains(t, err, "failed to load keyword tables")
}

func TestKeywordSet(t *testing.T) {
	set := NewKeywordSet([]string{"", "DEB AUT", "H&M"})
	assert.Equal(t, 2, set.Len())

	kw, ok := set.FirstMatch("DEB.AUT. ANTEL")
	assert.True(t, ok)
	assert.Equal(t, "DEB AUT", kw)

	_, ok = set.FirstMatch("DEBAUT")
	assert.False(t, ok)

	_, ok = set.FirstMatch("COMPRA H&M MONTEVIDEO")
	assert.True(t, ok)

	var nilSet *KeywordSet
	_, ok = nilSet.FirstMatch("ANY")
	assert.False(t, ok)
}
