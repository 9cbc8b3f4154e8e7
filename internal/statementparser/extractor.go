package statementparser

import (
	"regexp"
	"strings"

	"fedelife/expense-extractor/internal/currencyutils"
	"fedelife/expense-extractor/internal/dateutils"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/textutils"

	"github.com/shopspring/decimal"
)

// Pattern families, in the order they are tried. When two families report the same
// amount the earlier family keeps it.
const (
	FamilyColumns  = "columns"
	FamilyKeyword  = "keyword"
	FamilyCurrency = "currency"
	FamilyLocaleEU = "locale-eu"
	FamilyLocaleUS = "locale-us"
	FamilyTrailing = "trailing"
)

var (
	// DefaultMinAmount and DefaultMaxAmount are exclusive bounds: amounts equal to
	// either are discarded as noise.
	DefaultMinAmount = decimal.NewFromInt(1)
	DefaultMaxAmount = decimal.NewFromInt(10_000_000)
)

var (
	numberToken    = regexp.MustCompile(`\d[\d.,]*\d|\d`)
	decimalShape   = regexp.MustCompile(`^(?:\d{1,3}(?:\.\d{3})+,\d{2}|\d{1,3}(?:,\d{3})+\.\d{2}|\d+[.,]\d{2})$`)
	decimalComma   = regexp.MustCompile(`^(?:\d{1,3}(?:\.\d{3})+|\d+),\d{2}$`)
	decimalPoint   = regexp.MustCompile(`^(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}$`)
	integerShape   = regexp.MustCompile(`^(?:\d{1,3}(?:[.,]\d{3})+|\d+)$`)
	markerBefore   = regexp.MustCompile(`(?i)(U\$S|US\$|\$U|USD|UYU|EUR|€|\$)\s?$`)
	markerAfter    = regexp.MustCompile(`(?i)^\s?(U\$S|US\$|\$U|USD|UYU|EUR|€)(?:[^A-Z]|$)`)
	trailingRest   = regexp.MustCompile(`^[\s\-]*$`)
	columnGap      = regexp.MustCompile(`^\s+$`)
	installmentTok = regexp.MustCompile(`(?i)(?:CUOTAS?\s*)?\b\d{1,2}/\d{1,2}\b`)
	currencyMarker = regexp.MustCompile(`(?i)U\$S|US\$|\$U|\bUSD\b|\bUYU\b|\bEUR\b|€|\$`)
	codeToken      = regexp.MustCompile(`\b\d{4,}\b|\b\d[\d.,]*[.,]\d{2}\b`)
)

// PatternFamily is one entry of the amount pattern bank. A token belongs to the family
// when every regex that is set matches: Shape against the token itself, Before against
// the text preceding it and After against the text following it. The first capture
// group of Before or After, when present, is the currency marker.
type PatternFamily struct {
	Name   string
	Weight float64
	Shape  *regexp.Regexp
	Before *regexp.Regexp
	After  *regexp.Regexp

	// FoldBefore matches Before against the accent-folded upper-case prefix.
	FoldBefore bool
	// LastOnly restricts the family to the final amount token of the line.
	LastOnly bool
	// Once stops the family after its first matching token.
	Once bool
}

func (f PatternFamily) match(masked string, tokens []token, i int) (string, bool) {
	tok := tokens[i]
	if f.LastOnly && i != len(tokens)-1 {
		return "", false
	}
	if f.Shape != nil && !f.Shape.MatchString(tok.text) {
		return "", false
	}
	marker := ""
	if f.Before != nil {
		prefix := masked[:tok.start]
		if f.FoldBefore {
			prefix = textutils.FoldKeyword(prefix)
		}
		m := f.Before.FindStringSubmatch(prefix)
		if m == nil {
			return "", false
		}
		if len(m) > 1 {
			marker = m[1]
		}
	}
	if f.After != nil {
		m := f.After.FindStringSubmatch(masked[tok.end:])
		if m == nil {
			return "", false
		}
		if len(m) > 1 && marker == "" {
			marker = m[1]
		}
	}
	return currencyutils.CurrencyForSymbol(marker, ""), true
}

// DefaultPatternFamilies is the fixed part of the bank. The keyword family is built
// per extractor from the expense keywords and always runs first.
var DefaultPatternFamilies = []PatternFamily{
	{Name: FamilyCurrency, Weight: 0.9, Before: markerBefore},
	{Name: FamilyCurrency, Weight: 0.9, After: markerAfter},
	{Name: FamilyLocaleEU, Weight: 0.7, Shape: decimalComma},
	{Name: FamilyLocaleUS, Weight: 0.7, Shape: decimalPoint},
	{Name: FamilyTrailing, Weight: 0.4, After: trailingRest, LastOnly: true},
}

const (
	keywordWeight = 1.0
	columnsWeight = 1.0
)

// Candidate is one amount found in a line, with the text around it.
type Candidate struct {
	AmountText   string
	Amount       decimal.Decimal
	CurrencyHint string
	Family       string
	Weight       float64
	Context      string

	start, end int
}

// Extractor pulls amount candidates out of a single statement line.
type Extractor struct {
	minAmount decimal.Decimal
	maxAmount decimal.Decimal
	families  []PatternFamily
	logger    logging.Logger
}

// NewExtractor builds an extractor. The expense keywords drive the keyword family;
// with none, that family is left out.
func NewExtractor(minAmount, maxAmount decimal.Decimal, expenseKeywords []string, logger logging.Logger) *Extractor {
	e := &Extractor{
		minAmount: minAmount,
		maxAmount: maxAmount,
		logger:    logging.OrDefault(logger),
	}
	if alternation := keywordAlternation(expenseKeywords); alternation != "" {
		e.families = append(e.families, PatternFamily{
			Name:       FamilyKeyword,
			Weight:     keywordWeight,
			Shape:      decimalShape,
			Before:     regexp.MustCompile(`(?:^|[^A-Z0-9])(?:` + alternation + `)(?:$|[^A-Z0-9])`),
			FoldBefore: true,
			Once:       true,
		})
	}
	e.families = append(e.families, DefaultPatternFamilies...)
	return e
}


func keywordAlternation(keywords []string) string {
	parts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		words := strings.Fields(textutils.FoldKeyword(kw))
		if len(words) == 0 {
			continue
		}
		for i := range words {
			words[i] = regexp.QuoteMeta(words[i])
		}
		parts = append(parts, strings.Join(words, `[^A-Z0-9]+`))
	}
	return strings.Join(parts, "|")
}

type token struct {
	text       string
	start, end int
}

// Extract returns the line's candidates, strongest family first. Each amount appears
// at most once, as a positive value strictly inside the configured bounds.
func (e *Extractor) Extract(line string) []Candidate {
	masked := maskNonAmounts(line)
	tokens := scanTokens(masked)
	if len(tokens) == 0 {
		return nil
	}

	if candidates, ok := e.columnPair(line, masked, tokens); ok {
		return candidates
	}

	var candidates []Candidate
	seen := make(map[string]int)
	for _, family := range e.families {
		for i, tok := range tokens {
			hint, ok := family.match(masked, tokens, i)
			if !ok {
				continue
			}
			amount, inBounds := e.parse(tok, line)
			if inBounds {
				key := amount.StringFixed(2)
				if j, dup := seen[key]; dup {
					if candidates[j].CurrencyHint == "" {
						candidates[j].CurrencyHint = hint
					}
				} else {
					seen[key] = len(candidates)
					candidates = append(candidates, newCandidate(tok, amount, family.Name, family.Weight, hint))
				}
			}
			if family.Once {
				break
			}
		}
	}

	context := describe(masked, candidates)
	for i := range candidates {
		candidates[i].Context = context
	}
	return candidates
}

// columnPair handles the card-statement layout where a line starting with a
// "DD MM YY" date ends in two decimal-comma columns, pesos then dollars. Both
// columns describe one charge, so a single candidate comes back: the dollar
// column tagged USD, or the peso column when the dollar one is empty or zero.
func (e *Extractor) columnPair(line, masked string, tokens []token) ([]Candidate, bool) {
	n := len(tokens)
	if n < 2 || !dateutils.StartsWithDate(line) {
		return nil, false
	}
	local, foreign := tokens[n-2], tokens[n-1]
	if !decimalComma.MatchString(local.text) || !decimalComma.MatchString(foreign.text) {
		return nil, false
	}
	if !columnGap.MatchString(masked[local.end:foreign.start]) || !trailingRest.MatchString(masked[foreign.end:]) {
		return nil, false
	}

	var picked []Candidate
	if amount, ok := e.parse(foreign, line); ok {
		picked = append(picked, newCandidate(foreign, amount, FamilyColumns, columnsWeight, models.CurrencyUSD))
	} else if amount, ok := e.parse(local, line); ok {
		picked = append(picked, newCandidate(local, amount, FamilyColumns, columnsWeight, models.CurrencyUYU))
	}

	blanked := []byte(masked)
	for i := local.start; i < foreign.end; i++ {
		blanked[i] = ' '
	}
	context := describe(string(blanked), nil)
	for i := range picked {
		picked[i].Context = context
	}
	return picked, true
}

// parse reads a token as a positive amount and reports whether it is inside the bounds.
func (e *Extractor) parse(tok token, line string) (decimal.Decimal, bool) {
	amount, err := currencyutils.ParseAmount(tok.text)
	if err != nil {
		return decimal.Zero, false
	}
	amount = amount.Abs()
	if amount.LessThanOrEqual(e.minAmount) || amount.GreaterThanOrEqual(e.maxAmount) {
		e.logger.Debug("Amount outside bounds",
			logging.F(logging.FieldAmount, amount.String()),
			logging.F(logging.FieldLine, line))
		return decimal.Zero, false
	}
	return amount, true
}

func newCandidate(tok token, amount decimal.Decimal, family string, weight float64, hint string) Candidate {
	return Candidate{
		AmountText:   tok.text,
		Amount:       amount,
		CurrencyHint: hint,
		Family:       family,
		Weight:       weight,
		start:        tok.start,
		end:          tok.end,
	}
}

// maskNonAmounts blanks dates and installment markers without shifting byte offsets.
func maskNonAmounts(line string) string {
	blank := func(s string) string { return strings.Repeat(" ", len(s)) }
	for _, re := range dateutils.DatePatterns {
		line = re.ReplaceAllStringFunc(line, blank)
	}
	return installmentTok.ReplaceAllStringFunc(line, blank)
}

func scanTokens(masked string) []token {
	var tokens []token
	for _, loc := range numberToken.FindAllStringIndex(masked, -1) {
		text := masked[loc[0]:loc[1]]
		switch {
		case decimalShape.MatchString(text):
			tokens = append(tokens, token{text: text, start: loc[0], end: loc[1]})
		case integerShape.MatchString(text):
			tokens = append(tokens, token{text: text, start: loc[0], end: loc[1]})
		}
	}
	return tokens
}

// describe strips amounts, currency markers and reference codes, leaving the
// merchant text of the line.
func describe(masked string, candidates []Candidate) string {
	b := []byte(masked)
	for _, c := range candidates {
		for i := c.start; i < c.end; i++ {
			b[i] = ' '
		}
	}
	return strings.TrimSpace(textutils.RemoveSpans(string(b), currencyMarker, codeToken))
}
