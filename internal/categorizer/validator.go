// Package categorizer decides whether a statement line describes an outgoing expense
// and assigns it a category, driven entirely by keyword tables.
package categorizer

import (
	"fmt"

	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/store"
	"fedelife/expense-extractor/internal/textutils"

	"github.com/shopspring/decimal"
)

// Rejection reasons reported in Decision.Reason.
const (
	ReasonAccepted        = "accepted"
	ReasonNonPositive     = "non-positive amount"
	ReasonNoExpenseSignal = "no expense keyword"
	ReasonIncomeVeto      = "income keyword"
)

// Decision is the validator's verdict on one candidate.
type Decision struct {
	Accepted   bool
	Category   string
	Confidence models.Confidence
	Reason     string
	Keyword    string
}

type categoryMatcher struct {
	name string
	set  *KeywordSet
}

// ExpenseValidator applies keyword polarity rules and the category table.
type ExpenseValidator struct {
	expense    *KeywordSet
	income     *KeywordSet
	categories []categoryMatcher
	logger     logging.Logger
}

// NewExpenseValidator compiles the tables. Category rules keep their file order.
func NewExpenseValidator(tables models.KeywordTables, logger logging.Logger) *ExpenseValidator {
	v := &ExpenseValidator{
		expense: NewKeywordSet(tables.Expense),
		income:  NewKeywordSet(tables.Income),
		logger:  logging.OrDefault(logger),
	}
	for _, rule := range tables.Categories {
		v.categories = append(v.categories, categoryMatcher{name: rule.Name, set: NewKeywordSet(rule.Keywords)})
	}
	return v
}

// NewExpenseValidatorFromSource loads tables from a keyword source.
func NewExpenseValidatorFromSource(source store.KeywordSource, logger logging.Logger) (*ExpenseValidator, error) {
	tables, err := source.LoadKeywordTables()
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword tables: %w", err)
	}
	return NewExpenseValidator(tables, logger), nil
}

// Validate accepts a candidate only when the line carries an expense keyword and no
// income keyword. The income check runs after the expense match and always wins.
func (v *ExpenseValidator) Validate(line string, amount decimal.Decimal) Decision {
	if !amount.IsPositive() {
		return Decision{Reason: ReasonNonPositive}
	}

	folded := textutils.FoldKeyword(line)

	expenseKeyword, ok := v.expense.FirstMatch(folded)
	if !ok {
		return Decision{Reason: ReasonNoExpenseSignal}
	}
	if incomeKeyword, vetoed := v.income.FirstMatch(folded); vetoed {
		v.logger.Debug("Candidate rejected by income keyword",
			logging.F(logging.FieldLine, line),
			logging.F(logging.FieldKeyword, incomeKeyword))
		return Decision{Reason: ReasonIncomeVeto, Keyword: incomeKeyword}
	}

	category, categoryKeyword, found := v.categorizeFolded(folded)
	decision := Decision{
		Accepted:   true,
		Category:   category,
		Confidence: models.ConfidenceMedium,
		Reason:     ReasonAccepted,
		Keyword:    expenseKeyword,
	}
	if !found {
		decision.Confidence = models.ConfidenceLow
	} else {
		decision.Keyword = categoryKeyword
	}
	return decision
}

// Categorize looks text up in the category table, returning CategoryOther when nothing matches.
func (v *ExpenseValidator) Categorize(text string) (string, bool) {
	category, _, found := v.categorizeFolded(textutils.FoldKeyword(text))
	return category, found
}

// IsIncome reports whether text carries an income keyword.
func (v *ExpenseValidator) IsIncome(text string) bool {
	_, found := v.income.FirstMatch(textutils.FoldKeyword(text))
	return found
}

func (v *ExpenseValidator) categorizeFolded(folded string) (string, string, bool) {
	for _, c := range v.categories {
		if kw, ok := c.set.FirstMatch(folded); ok {
			return c.name, kw, true
		}
	}
	return models.CategoryOther, "", false
}
