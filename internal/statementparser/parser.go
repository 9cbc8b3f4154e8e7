package statementparser

import (
	"fedelife/expense-extractor/internal/categorizer"
	"fedelife/expense-extractor/internal/dateutils"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/textutils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyInferrer resolves the currency of a line that carried no explicit marker.
type CurrencyInferrer interface {
	InferCurrency(line string) string
}

// Options tunes the heuristic parser. Zero values fall back to the package defaults.
type Options struct {
	MinLineLength        int
	MinAmount            decimal.Decimal
	MaxAmount            decimal.Decimal
	DescriptionMaxLength int
}

func (o Options) withDefaults() Options {
	if o.MinLineLength <= 0 {
		o.MinLineLength = DefaultMinLineLength
	}
	if o.MinAmount.IsZero() {
		o.MinAmount = DefaultMinAmount
	}
	if o.MaxAmount.IsZero() {
		o.MaxAmount = DefaultMaxAmount
	}
	if o.DescriptionMaxLength <= 0 {
		o.DescriptionMaxLength = models.DescriptionMaxLength
	}
	return o
}

// Parser is the heuristic extraction path: normalize, classify, extract, validate.
type Parser struct {
	classifier *Classifier
	extractor  *Extractor
	validator  *categorizer.ExpenseValidator
	currency   CurrencyInferrer
	descMax    int
	logger     logging.Logger
}

// NewParser wires the heuristic path from keyword tables.
func NewParser(tables models.KeywordTables, currency CurrencyInferrer, opts Options, logger logging.Logger) *Parser {
	logger = logging.OrDefault(logger)
	opts = opts.withDefaults()
	return &Parser{
		classifier: NewClassifier(opts.MinLineLength, nil),
		extractor:  NewExtractor(opts.MinAmount, opts.MaxAmount, tables.Expense, logger),
		validator:  categorizer.NewExpenseValidator(tables, logger),
		currency:   currency,
		descMax:    opts.DescriptionMaxLength,
		logger:     logger,
	}
}

// Parse extracts expenses from raw statement text. It never fails; text with nothing
// recognizable yields an empty slice.
func (p *Parser) Parse(text string) []models.ExtractedExpense {
	expenses := []models.ExtractedExpense{}
	ignored := 0
	for n, line := range textutils.Lines(textutils.Normalize(text)) {
		if rule, skip := p.classifier.Classify(line); skip {
			ignored++
			p.logger.Debug("Ignoring line",
				logging.F(logging.FieldLineNumber, n+1),
				logging.F(logging.FieldReason, rule))
			continue
		}
		expenses = append(expenses, p.ParseLine(line)...)
	}

	p.logger.Info("Heuristic extraction finished",
		logging.F(logging.FieldStrategy, string(models.SourceHeuristic)),
		logging.F(logging.FieldCount, len(expenses)),
		logging.F(logging.FieldDropped, ignored))
	return expenses
}

// ParseLine turns one non-noise line into zero or more expenses.
func (p *Parser) ParseLine(line string) []models.ExtractedExpense {
	candidates := p.extractor.Extract(line)
	if len(candidates) == 0 {
		return nil
	}

	date, _ := dateutils.ExtractDate(line)
	installment := textutils.ExtractInstallment(line)

	var expenses []models.ExtractedExpense
	for _, c := range candidates {
		decision := p.validator.Validate(line, c.Amount)
		if !decision.Accepted {
			continue
		}

		currency := c.CurrencyHint
		if currency == "" && p.currency != nil {
			currency = p.currency.InferCurrency(line)
		}

		description := textutils.TruncateDescription(c.Context, p.descMax)
		if description == "" {
			description = models.FallbackDescription(currency, c.Amount)
		}

		expenses = append(expenses, models.ExtractedExpense{
			ID:           uuid.NewString(),
			Date:         date,
			Description:  description,
			Amount:       c.Amount,
			Currency:     currency,
			Category:     decision.Category,
			Confidence:   decision.Confidence,
			OriginalText: line,
			Source:       models.SourceHeuristic,
			Installment:  installment,
		})
		p.logger.Debug("Accepted candidate",
			logging.F(logging.FieldAmount, c.Amount.String()),
			logging.F(logging.FieldPattern, c.Family),
			logging.F(logging.FieldConfidence, c.Weight),
			logging.F(logging.FieldCategory, decision.Category))
	}
	return expenses
}
