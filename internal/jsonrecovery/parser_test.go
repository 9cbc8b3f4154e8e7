package jsonrecovery

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() (*Parser, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	return NewParser(Options{}, logger), logger
}

func TestParser_Stages(t *testing.T) {
	p, _ := newTestParser()

	var names []string
	for _, s := range p.stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{StageDirect, StageBasicRepair, StageSection, StageRegex}, names)
}

func TestParser_DirectParse(t *testing.T) {
	p, _ := newTestParser()

	raw := `{"success": true, "confidence": 0.9, "summary": "2 gastos", "expenses": [
		{"date": "15/03/2024", "description": "Supermercado Disco", "amount": 1250.50, "currency": "UYU", "category": "alimentacion", "confidence": "alta"},
		{"fecha": "2024-03-16", "Descripcion": "Netflix", "Monto": "12,99", "moneda": "U$S", "categoria": "entretenimiento", "confianza": 0.7}
	]}`

	result := p.Parse(raw)
	require.True(t, result.Success)
	assert.Equal(t, StageDirect, result.Stage)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
	assert.Equal(t, "2 gastos", result.Summary)
	require.Len(t, result.Expenses, 2)

	disco := result.Expenses[0]
	assert.Equal(t, "2024-03-15", disco.Date)
	assert.Equal(t, "Supermercado Disco", disco.Description)
	assert.True(t, decimal.RequireFromString("1250.50").Equal(disco.Amount))
	assert.Equal(t, "UYU", disco.Currency)
	assert.Equal(t, models.CategoryFood, disco.Category)
	assert.Equal(t, models.ConfidenceHigh, disco.Confidence)
	assert.Equal(t, models.SourceModel, disco.Source)
	assert.NotEmpty(t, disco.ID)

	netflix := result.Expenses[1]
	assert.Equal(t, "2024-03-16", netflix.Date)
	assert.True(t, decimal.RequireFromString("12.99").Equal(netflix.Amount))
	assert.Equal(t, "USD", netflix.Currency)
	assert.Equal(t, models.CategoryEntertainment, netflix.Category)
	assert.Equal(t, models.ConfidenceMedium, netflix.Confidence)
}

func TestParser_FencedResponseWithProse(t *testing.T) {
	p, _ := newTestParser()

	raw := "Aquí está el resultado:\n```json\n{\"success\": true, \"expenses\": [{\"description\": \"ANCAP\", \"amount\": 2100}]}\n```\nSaludos."
	result := p.Parse(raw)
	require.True(t, result.Success)
	assert.Equal(t, StageDirect, result.Stage)
	require.Len(t, result.Expenses, 1)
	assert.Equal(t, "ANCAP", result.Expenses[0].Description)
}

func TestParser_CascadeRobustness(t *testing.T) {
	p, _ := newTestParser()

	raw := `{"success": true, 'expenses': [{"description": "Coffee Shop", "amount": 50,00, "currency": "L"},]}`
	result := p.Parse(raw)
	require.True(t, result.Success)
	assert.Equal(t, StageBasicRepair, result.Stage)
	require.Len(t, result.Expenses, 1)
	assert.True(t, decimal.NewFromInt(50).Equal(result.Expenses[0].Amount))
	assert.Equal(t, "Coffee Shop", result.Expenses[0].Description)
	assert.LessOrEqual(t, result.Confidence, 0.8)
}

func TestParser_PartialRecoveryDropsInvalidElement(t *testing.T) {
	p, logger := newTestParser()

	raw := `{"success": true, "confidence": 0.85, "summary": "Cuatro gastos", "expenses": [
		{"date": "2024-03-12", "description": "TIENDA INGLESA", "amount": 1250.00, "currency": "UYU"},
		{"date": "2024-03-13", "description": "UTE", "amount": 3450.00, "currency": "UYU"},
		{"date": "2024-03-14", "description": "ANCAP", "currency": "UYU"},
		{"date": "2024-03-15", "description": "NETFLIX", "amount": 12.99, "currency": "USD"}
	]}`

	result := p.Parse(raw)
	require.True(t, result.Success)
	require.Len(t, result.Expenses, 3)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, "Cuatro gastos (recovered 3 of 4 expenses)", result.Summary)
	for _, e := range result.Expenses {
		assert.NotEqual(t, "ANCAP", e.Description)
	}
	assert.True(t, logger.HasEntry("DEBUG", "Dropping expense element"))
}

func TestParser_PythonLiterals(t *testing.T) {
	p, _ := newTestParser()

	result := p.Parse(`{'success': True, 'expenses': [{'description': 'Farmacia', 'amount': 320.0, 'currency': None}]}`)
	require.True(t, result.Success)
	assert.Equal(t, StageBasicRepair, result.Stage)
	require.Len(t, result.Expenses, 1)
	assert.Equal(t, "", result.Expenses[0].Currency)
	assert.Equal(t, "320", result.Expenses[0].Amount.String())
}

func TestParser_SectionRepairOfTruncatedResponse(t *testing.T) {
	p, _ := newTestParser()

	raw := `{"success": true, "confidence": 0.95, "summary": "Gastos de marzo", "expenses": [` +
		`{"date": "2024-03-12", "description": "TIENDA INGLESA", "amount": 1250}, ` +
		`{"description": "SIN FECHA", "amount": 99}, ` +
		`{"date": "2024-03-13", "description": "UTE", "amount": 3450}, ` +
		`{"date": "2024-03-14", "description": "ANCAP", "am`

	result := p.Parse(raw)
	require.True(t, result.Success)
	assert.Equal(t, StageSection, result.Stage)
	require.Len(t, result.Expenses, 2)
	assert.Equal(t, "TIENDA INGLESA", result.Expenses[0].Description)
	assert.Equal(t, "UTE", result.Expenses[1].Description)
	assert.Equal(t, 2, result.Dropped)
	assert.InDelta(t, 0.6, result.Confidence, 1e-9)
	assert.Equal(t, "Gastos de marzo (recovered 2 of 4 expenses)", result.Summary)
}

func TestParser_RegexFallback(t *testing.T) {
	p, _ := newTestParser()

	raw := `I found these: description: "Coffee", amount: 45.5, currency: "USD" ... description: 'Taxi', amount: -300`
	result := p.Parse(raw)
	require.True(t, result.Success)
	assert.Equal(t, StageRegex, result.Stage)
	assert.InDelta(t, 0.3, result.Confidence, 1e-9)
	require.Len(t, result.Expenses, 2)

	coffee := result.Expenses[0]
	assert.Equal(t, "Coffee", coffee.Description)
	assert.Equal(t, "45.5", coffee.Amount.String())
	assert.Equal(t, "USD", coffee.Currency)
	assert.Equal(t, "", coffee.Date)
	assert.Equal(t, models.CategoryOther, coffee.Category)
	assert.Equal(t, models.ConfidenceLow, coffee.Confidence)

	taxi := result.Expenses[1]
	assert.Equal(t, "300", taxi.Amount.String())
	assert.Equal(t, "", taxi.Currency)
}

func TestParser_RegexFallbackIsCapped(t *testing.T) {
	p, _ := newTestParser()

	var items []string
	for i := 1; i <= 60; i++ {
		items = append(items, fmt.Sprintf(`{"description": "Item %d", "amount": %d}`, i, i+1))
	}
	raw := `{"items": [` + strings.Join(items, ", ") + `]}`

	result := p.Parse(raw)
	require.True(t, result.Success)
	assert.Equal(t, StageRegex, result.Stage)
	assert.Len(t, result.Expenses, DefaultMaxFallbackElements)

	small := NewParser(Options{MaxFallbackElements: 5}, logging.NewMockLogger())
	assert.Len(t, small.Parse(raw).Expenses, 5)
}

func TestParser_EmptyExpensesArray(t *testing.T) {
	p, _ := newTestParser()

	result := p.Parse(`{"success": true, "summary": "Sin gastos", "expenses": []}`)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Expenses)
	assert.Empty(t, result.Expenses)
	assert.Equal(t, "Sin gastos", result.Summary)
	assert.Empty(t, result.Error)
}

func TestParser_HardFailure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "prose only", raw: "I could not read the statement, sorry."},
		{name: "no element validates", raw: `{"expenses": [{"description": "A"}, {"amount": 5}]}`},
		{name: "zero amounts", raw: `{"expenses": [{"description": "A", "amount": 0, "date": "2024-01-01"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestParser()
			result := p.Parse(tt.raw)
			assert.False(t, result.Success)
			assert.NotNil(t, result.Expenses)
			assert.Empty(t, result.Expenses)
			assert.NotEmpty(t, result.Error)
			assert.NotContains(t, result.Error, "\n")

			var recoveryErr *parsererror.RecoveryError
			assert.True(t, errors.As(result.Err, &recoveryErr))
		})
	}
}

func TestParser_HardFailureReportsEveryStage(t *testing.T) {
	p, logger := newTestParser()

	result := p.Parse("no json here")
	assert.ErrorIs(t, result.Err, ErrNoJSONObject)
	assert.ErrorIs(t, result.Err, ErrMarkerNotFound)
	assert.ErrorIs(t, result.Err, ErrNothingSalvaged)
	assert.True(t, logger.HasEntry("WARN", "Model response could not be recovered"))
}

func TestParser_AmountsArePositive(t *testing.T) {
	p, _ := newTestParser()

	result := p.Parse(`{"expenses": [{"description": "Reintegro mal signado", "amount": -45.00}, {"description": "Compra", "amount": "(120,50)"}]}`)
	require.True(t, result.Success)
	require.Len(t, result.Expenses, 2)
	assert.Equal(t, "45", result.Expenses[0].Amount.String())
	assert.Equal(t, "120.5", result.Expenses[1].Amount.String())
	for _, e := range result.Expenses {
		assert.True(t, e.Amount.IsPositive())
	}
}

func TestParser_SubCentAmountIsDropped(t *testing.T) {
	p, logger := newTestParser()

	result := p.Parse(`{"success": true, "expenses": [
		{"description": "Fee", "date": "2024-01-01", "amount": 0.004, "currency": "UYU"},
		{"description": "Compra Disco", "date": "2024-01-02", "amount": 25.50, "currency": "UYU"}
	]}`)
	require.True(t, result.Success)
	assert.Equal(t, StageDirect, result.Stage)
	require.Len(t, result.Expenses, 1)
	assert.Equal(t, "Compra Disco", result.Expenses[0].Description)
	assert.Equal(t, 1, result.Dropped)
	assert.Contains(t, result.Summary, "recovered 1 of 2 expenses")
	assert.True(t, logger.HasEntry("DEBUG", "Dropping expense element"))
	for _, e := range result.Expenses {
		assert.True(t, e.Amount.IsPositive())
	}
}

func TestElement_AmountRoundsBeforePositivityCheck(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    string
		wantErr bool
	}{
		{"below one cent", 0.004, "", true},
		{"negative below one cent", "-0.001", "", true},
		{"half cent rounds up", "0.005", "0.01", false},
		{"regular", 12.345, "12.35", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := Element{"amount": tt.value}.amount()
			if tt.wantErr {
				var verr *parsererror.ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount.String())
		})
	}
}

func TestParser_ConfidencePercentAndCeiling(t *testing.T) {
	p, _ := newTestParser()

	result := p.Parse(`{"confidence": 75, "expenses": [{"description": "UTE", "amount": 10}]}`)
	require.True(t, result.Success)
	assert.InDelta(t, 0.75, result.Confidence, 1e-9)

	result = p.Parse(`{"confidence": 0.99, "expenses": [{description: "UTE", amount: 10}]}`)
	require.True(t, result.Success)
	assert.Equal(t, StageBasicRepair, result.Stage)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}
